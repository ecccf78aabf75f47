package pricing

import (
	"context"
	"sort"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
)

// Provider defines the interface for fetching flex pilot prices.
type Provider interface {
	// GetCurrentPrice returns the price for the hour in progress.
	GetCurrentPrice(ctx context.Context) (types.PricePoint, error)

	// GetConfirmedPrices returns settled prices for a specific time range.
	GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error)
}

// SeriesFromPoints converts provider output into the parallel-slice form the
// savings engine aligns against, preserving point order.
func SeriesFromPoints(points []types.PricePoint) types.PricingSeries {
	s := types.PricingSeries{
		Timestamps: make([]time.Time, 0, len(points)),
		Prices:     make([]float64, 0, len(points)),
	}
	for _, p := range points {
		s.Timestamps = append(s.Timestamps, p.TSStart)
		s.Prices = append(s.Prices, p.DollarsPerKWH)
	}
	return s
}

func sortPoints(points []types.PricePoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].TSStart.Before(points[j].TSStart)
	})
}
