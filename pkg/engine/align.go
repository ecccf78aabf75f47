package engine

import (
	"fmt"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
)

// exactKeyLayout normalizes a timestamp to its local calendar fields at
// minute resolution. Seconds are truncated, not rounded.
const exactKeyLayout = "2006-01-02T15:04"

// Aligner matches a usage timestamp to a price in a pricing series. It tries
// an exact calendar match first and falls back to a (weekday, time-of-day)
// pattern match, which lets a usage interval reuse the price recorded for the
// same weekday and time elsewhere in the series.
//
// Both lookup maps are built by iterating the series in order, so when two
// points normalize to the same key the most recent one wins. That collision
// policy is deliberate, not incidental: the upstream feed emits chronological
// points and the later point supersedes the earlier one.
type Aligner struct {
	exact   map[string]float64
	pattern map[string]float64
}

// NewAligner validates the series and builds both lookup maps.
func NewAligner(series types.PricingSeries) (*Aligner, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing series: %w", err)
	}

	a := &Aligner{
		exact:   make(map[string]float64, series.Len()),
		pattern: make(map[string]float64, series.Len()),
	}
	for i, ts := range series.Timestamps {
		a.exact[ts.Format(exactKeyLayout)] = series.Prices[i]
		a.pattern[patternKey(ts)] = series.Prices[i]
	}
	return a, nil
}

// Align returns the price for a usage timestamp. ok is false when neither
// strategy found a price; such records are dropped by the engine rather than
// treated as errors.
func (a *Aligner) Align(t time.Time) (price float64, ok bool) {
	if price, ok = a.exact[t.Format(exactKeyLayout)]; ok {
		return price, true
	}
	price, ok = a.pattern[patternKey(t)]
	return price, ok
}

func patternKey(t time.Time) string {
	return t.Weekday().String() + "T" + t.Format("15:04")
}
