package engine

import (
	"testing"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day, hour, minute int) time.Time {
	return time.Date(2024, time.July, day, hour, minute, 0, 0, time.Local)
}

func TestAlignerExactMatch(t *testing.T) {
	a, err := NewAligner(types.PricingSeries{
		Timestamps: []time.Time{ts(15, 17, 0), ts(15, 18, 0)},
		Prices:     []float64{0.20, 0.25},
	})
	require.NoError(t, err)

	price, ok := a.Align(ts(15, 17, 0))
	require.True(t, ok)
	assert.Equal(t, 0.20, price)

	// Seconds are truncated when normalizing.
	price, ok = a.Align(ts(15, 18, 0).Add(30 * time.Second))
	require.True(t, ok)
	assert.Equal(t, 0.25, price)
}

func TestAlignerPatternFallback(t *testing.T) {
	// Price recorded on Monday 2024-07-15 at 17:00.
	a, err := NewAligner(types.PricingSeries{
		Timestamps: []time.Time{ts(15, 17, 0)},
		Prices:     []float64{0.20},
	})
	require.NoError(t, err)

	// Usage from the following Monday at the same time: no exact match, but
	// the (weekday, time-of-day) pattern matches.
	price, ok := a.Align(ts(22, 17, 0))
	require.True(t, ok)
	assert.Equal(t, 0.20, price)

	// Tuesday at the same time has no pattern entry.
	_, ok = a.Align(ts(16, 17, 0))
	assert.False(t, ok)
}

func TestAlignerExactBeatsPattern(t *testing.T) {
	// Monday 07-15 17:00 and Monday 07-22 17:00 share a pattern key but have
	// distinct exact entries.
	a, err := NewAligner(types.PricingSeries{
		Timestamps: []time.Time{ts(15, 17, 0), ts(22, 17, 0)},
		Prices:     []float64{0.20, 0.90},
	})
	require.NoError(t, err)

	price, ok := a.Align(ts(15, 17, 0))
	require.True(t, ok)
	assert.Equal(t, 0.20, price, "exact match must win over the pattern entry")
}

func TestAlignerMostRecentWinsOnCollision(t *testing.T) {
	// Two points normalize to the same minute; the later one wins.
	a, err := NewAligner(types.PricingSeries{
		Timestamps: []time.Time{ts(15, 17, 0).Add(10 * time.Second), ts(15, 17, 0).Add(40 * time.Second)},
		Prices:     []float64{0.10, 0.30},
	})
	require.NoError(t, err)

	price, ok := a.Align(ts(15, 17, 0))
	require.True(t, ok)
	assert.Equal(t, 0.30, price)
}

func TestAlignerRejectsMismatchedSeries(t *testing.T) {
	_, err := NewAligner(types.PricingSeries{
		Timestamps: []time.Time{ts(15, 17, 0)},
		Prices:     []float64{0.20, 0.25},
	})
	assert.Error(t, err)
}
