package types

import "fmt"

// ValidationError reports input that was rejected at ingestion instead of
// being allowed to propagate as NaN through cumulative sums.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
