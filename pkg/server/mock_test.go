package server

import (
	"context"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) GetCurrentPrice(ctx context.Context) (types.PricePoint, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.PricePoint), args.Error(1)
}

func (m *mockProvider) GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PricePoint), args.Error(1)
}
