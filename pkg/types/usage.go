package types

import "time"

// UsageRecord represents a single metered interval of household consumption.
// Timestamps have minute resolution and carry the household's local calendar
// time; the engine never compares them across time zones.
type UsageRecord struct {
	Timestamp time.Time `json:"timestamp"`
	UsageKWH  float64   `json:"usageKWH"`
}
