package baseline

import (
	"testing"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-07-15 is a Monday, 2024-07-13 is a Saturday.
var (
	monday   = time.Date(2024, time.July, 15, 0, 0, 0, 0, time.Local)
	saturday = time.Date(2024, time.July, 13, 0, 0, 0, 0, time.Local)
)

func at(day time.Time, hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func TestDayTypeOf(t *testing.T) {
	assert.Equal(t, DayTypeWeekday, DayTypeOf(monday))
	assert.Equal(t, DayTypeWeekend, DayTypeOf(saturday))
	sunday := saturday.AddDate(0, 0, 1)
	assert.Equal(t, DayTypeWeekend, DayTypeOf(sunday))
	friday := monday.AddDate(0, 0, 4)
	assert.Equal(t, DayTypeWeekday, DayTypeOf(friday))
}

func TestBuildAverages(t *testing.T) {
	table := Build([]types.UsageRecord{
		{Timestamp: at(monday, 14), UsageKWH: 3},
		{Timestamp: at(monday.AddDate(0, 0, 1), 14), UsageKWH: 5},
	})
	require.Equal(t, 1, table.Len())

	got := table.Lookup(at(monday.AddDate(0, 0, 7), 14))
	assert.Equal(t, SourceExact, got.Source)
	assert.Equal(t, DayTypeWeekday, got.DayType)
	assert.Equal(t, 4.0, got.KWH)
}

func TestLookupFallbackAcrossDayTypes(t *testing.T) {
	// Only a weekend entry at hour 9 exists.
	table := Build([]types.UsageRecord{
		{Timestamp: at(saturday, 9), UsageKWH: 2.5},
	})

	got := table.Lookup(at(monday, 9))
	assert.Equal(t, SourceFallback, got.Source)
	assert.Equal(t, DayTypeWeekend, got.DayType)
	assert.Equal(t, 2.5, got.KWH)
}

func TestLookupMissingHour(t *testing.T) {
	table := Build([]types.UsageRecord{
		{Timestamp: at(saturday, 9), UsageKWH: 2.5},
	})

	got := table.Lookup(at(monday, 3))
	assert.Equal(t, SourceMissing, got.Source)
	assert.Equal(t, 0.0, got.KWH)
}

func TestBuildEmptyInput(t *testing.T) {
	table := Build(nil)
	assert.Equal(t, 0, table.Len())

	got := table.Lookup(at(monday, 12))
	assert.Equal(t, SourceMissing, got.Source)
	assert.Equal(t, 0.0, got.KWH)
}

func TestEntriesSorted(t *testing.T) {
	table := Build([]types.UsageRecord{
		{Timestamp: at(saturday, 9), UsageKWH: 2},
		{Timestamp: at(monday, 9), UsageKWH: 1},
		{Timestamp: at(monday, 3), UsageKWH: 4},
	})

	entries := table.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Hour: 3, DayType: "weekday", AverageKWH: 4}, entries[0])
	assert.Equal(t, Entry{Hour: 9, DayType: "weekday", AverageKWH: 1}, entries[1])
	assert.Equal(t, Entry{Hour: 9, DayType: "weekend", AverageKWH: 2}, entries[2])
}
