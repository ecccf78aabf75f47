package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPointsJSON(t *testing.T) {
	input := `[
		{"startTime":"2024-07-15T17:00:00","price":0.21},
		{"startTime":"2024-07-15T16:00:00","price":0.18}
	]`
	points, err := ReadPointsJSON(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Sorted by start time.
	assert.Equal(t, time.Date(2024, time.July, 15, 16, 0, 0, 0, time.UTC), points[0].TSStart)
	assert.Equal(t, 0.18, points[0].DollarsPerKWH)
	assert.Equal(t, points[0].TSStart.Add(time.Hour), points[0].TSEnd)
	assert.Equal(t, 0.21, points[1].DollarsPerKWH)
}

func TestReadPointsJSONErrors(t *testing.T) {
	_, err := ReadPointsJSON(strings.NewReader(`not json`), time.UTC)
	assert.Error(t, err)

	_, err = ReadPointsJSON(strings.NewReader(`[{"startTime":"yesterday","price":0.1}]`), time.UTC)
	assert.Error(t, err)

	// Out-of-range numbers fail during decoding.
	_, err = ReadPointsJSON(strings.NewReader(`[{"startTime":"2024-07-15T17:00:00","price":1e999}]`), time.UTC)
	assert.Error(t, err)
}
