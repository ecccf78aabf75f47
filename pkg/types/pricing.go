package types

import (
	"fmt"
	"math"
	"time"
)

// PricePoint represents the flex price of electricity in a time interval.
type PricePoint struct {
	Provider      string    `json:"provider"`
	TSStart       time.Time `json:"tsStart"`
	TSEnd         time.Time `json:"tsEnd"`
	DollarsPerKWH float64   `json:"dollarsPerKWH"`
}

// PricingSeries holds a pricing feed as parallel slices. Timestamps are
// usually chronological because the upstream feed emits them in order, but
// nothing here requires it. Prices may be negative.
type PricingSeries struct {
	Timestamps []time.Time `json:"timestamps"`
	Prices     []float64   `json:"prices"`
}

// Validate checks the parallel-slice invariant and rejects non-finite prices
// so NaN can never reach a savings fold.
func (s PricingSeries) Validate() error {
	if len(s.Timestamps) != len(s.Prices) {
		return fmt.Errorf("pricing series length mismatch: %d timestamps, %d prices", len(s.Timestamps), len(s.Prices))
	}
	for i, p := range s.Prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return ValidationError{
				Field:  "price",
				Value:  fmt.Sprintf("%v", p),
				Reason: fmt.Sprintf("non-finite price at index %d (%s)", i, s.Timestamps[i].Format(time.RFC3339)),
			}
		}
	}
	return nil
}

// Len returns the number of points in the series.
func (s PricingSeries) Len() int {
	return len(s.Timestamps)
}
