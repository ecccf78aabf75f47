// Package baseline derives the subscription-quantity table from a year of
// historical usage: the household's average consumption for each hour of day
// and day type, which the flex pilot treats as a free allotment.
package baseline

import (
	"sort"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
)

// DayType classifies a timestamp by calendar day-of-week only. There is no
// holiday awareness.
type DayType int

const (
	DayTypeWeekday DayType = iota
	DayTypeWeekend
)

func (d DayType) String() string {
	if d == DayTypeWeekend {
		return "weekend"
	}
	return "weekday"
}

// DayTypeOf returns the day type for a timestamp. Saturday and Sunday are
// weekend.
func DayTypeOf(t time.Time) DayType {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return DayTypeWeekend
	}
	return DayTypeWeekday
}

type slot struct {
	hour    int
	dayType DayType
}

// Table maps (hour, dayType) to average historical usage. Build it once per
// historical upload; it is immutable afterwards and safe for concurrent reads.
type Table struct {
	averages map[slot]float64
}

// Build groups records by (hour-of-day, dayType) and averages each non-empty
// group. Groups with no records are absent rather than zero-filled, so an
// empty input yields an empty table and every lookup degrades to zero.
func Build(records []types.UsageRecord) Table {
	sums := make(map[slot]float64)
	counts := make(map[slot]int)
	for _, r := range records {
		k := slot{hour: r.Timestamp.Hour(), dayType: DayTypeOf(r.Timestamp)}
		sums[k] += r.UsageKWH
		counts[k]++
	}

	averages := make(map[slot]float64, len(sums))
	for k, sum := range sums {
		averages[k] = sum / float64(counts[k])
	}
	return Table{averages: averages}
}

// Source says how a lookup was satisfied, so callers can log when a degraded
// baseline was used instead of silently mixing weekday and weekend averages.
type Source int

const (
	// SourceExact means the (hour, dayType) slot itself had an average.
	SourceExact Source = iota
	// SourceFallback means the slot was empty and the average was borrowed
	// from the other day type at the same hour.
	SourceFallback
	// SourceMissing means no day type had an average for the hour; the value
	// is zero and the subscription mechanism is effectively disabled for it.
	SourceMissing
)

func (s Source) String() string {
	switch s {
	case SourceExact:
		return "exact"
	case SourceFallback:
		return "fallback"
	default:
		return "missing"
	}
}

// Lookup is the result of resolving a subscription quantity.
type Lookup struct {
	KWH    float64
	Source Source
	// DayType is the day type the value actually came from, which differs
	// from the timestamp's own day type when Source is SourceFallback.
	DayType DayType
}

// Lookup resolves the subscription quantity for a timestamp. It tries the
// timestamp's own (hour, dayType) slot first, then the other day type at the
// same hour (weekday before weekend, deterministically), then gives up with
// zero.
func (t Table) Lookup(ts time.Time) Lookup {
	hour := ts.Hour()
	dayType := DayTypeOf(ts)

	if avg, ok := t.averages[slot{hour: hour, dayType: dayType}]; ok {
		return Lookup{KWH: avg, Source: SourceExact, DayType: dayType}
	}
	for _, dt := range []DayType{DayTypeWeekday, DayTypeWeekend} {
		if dt == dayType {
			continue
		}
		if avg, ok := t.averages[slot{hour: hour, dayType: dt}]; ok {
			return Lookup{KWH: avg, Source: SourceFallback, DayType: dt}
		}
	}
	return Lookup{Source: SourceMissing, DayType: dayType}
}

// Len returns the number of populated (hour, dayType) slots.
func (t Table) Len() int {
	return len(t.averages)
}

// Entry is a serializable row of the table for display.
type Entry struct {
	Hour       int     `json:"hour"`
	DayType    string  `json:"dayType"`
	AverageKWH float64 `json:"averageKWH"`
}

// Entries returns the table sorted by hour, weekday before weekend.
func (t Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.averages))
	for k, avg := range t.averages {
		entries = append(entries, Entry{Hour: k.hour, DayType: k.dayType.String(), AverageKWH: avg})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hour != entries[j].Hour {
			return entries[i].Hour < entries[j].Hour
		}
		return entries[i].DayType < entries[j].DayType
	})
	return entries
}
