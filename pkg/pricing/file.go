package pricing

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
)

// ReadPointsJSON parses a saved price file: the same JSON array of
// {startTime, price} entries the feed returns. Unlike the live client it
// fails on the first bad entry, since a local file should be correctable.
func ReadPointsJSON(r io.Reader, loc *time.Location) ([]types.PricePoint, error) {
	if loc == nil {
		loc = ptLocation
	}

	var data []flexPriceEntry
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode price file: %w", err)
	}

	points := make([]types.PricePoint, 0, len(data))
	for i, item := range data {
		ts, err := time.ParseInLocation("2006-01-02T15:04:05", item.StartTime, loc)
		if err != nil {
			return nil, fmt.Errorf("price entry %d: invalid startTime: %w", i, err)
		}
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return nil, types.ValidationError{
				Field:  "price",
				Value:  fmt.Sprintf("%v", item.Price),
				Reason: fmt.Sprintf("non-finite price in entry %d", i),
			}
		}
		ts = ts.Truncate(time.Hour)
		points = append(points, types.PricePoint{
			Provider:      providerName,
			TSStart:       ts,
			TSEnd:         ts.Add(time.Hour),
			DollarsPerKWH: item.Price,
		})
	}
	sortPoints(points)
	return points, nil
}
