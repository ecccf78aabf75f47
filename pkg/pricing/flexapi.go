// Package pricing fetches hourly flex pilot prices from the pilot program's
// pricing API and converts them into the series the engine consumes.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/flexpilot/flexpilot/pkg/common"
	"github.com/flexpilot/flexpilot/pkg/log"
	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/levenlabs/go-lflag"
)

// The pilot tariff is PG&E territory, so prices are published in Pacific Time.
var ptLocation = func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(fmt.Errorf("failed to load pacific time location: %w", err))
	}
	return loc
}()

const providerName = "flex_hourly"

// FlexAPI implements Provider against the pilot's hourly pricing feed.
type FlexAPI struct {
	apiURL string
	client *http.Client

	mu            sync.Mutex
	lastFetchTime time.Time
	cachedPoints  []types.PricePoint
}

// Configured sets up flags for the flex pricing API and returns the instance.
func Configured() *FlexAPI {
	f := &FlexAPI{
		client: common.HTTPClient(10 * time.Second),
	}
	apiURL := lflag.String("flex-api-url", "https://pricing.flexpilot.example/api/hourly", "URL for the flex pilot hourly pricing API")

	lflag.Do(func() {
		f.apiURL = *apiURL
	})

	return f
}

// Validate ensures the configuration is valid.
func (f *FlexAPI) Validate() error {
	if f.apiURL == "" {
		return fmt.Errorf("flex-api-url is required")
	}
	if _, err := url.Parse(f.apiURL); err != nil {
		return fmt.Errorf("failed to parse flex api url (%s): %w", f.apiURL, err)
	}
	return nil
}

// flexPriceEntry represents one element of the JSON array the feed returns.
type flexPriceEntry struct {
	StartTime string  `json:"startTime"`
	Price     float64 `json:"price"`
}

// fetchRange retrieves hourly prices for a specific range.
func (f *FlexAPI) fetchRange(ctx context.Context, start, end time.Time) ([]types.PricePoint, error) {
	start = start.In(ptLocation)
	end = end.In(ptLocation)

	u, err := url.Parse(f.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	params := url.Values{}
	params.Set("start", start.Format("2006-01-02T15:04"))
	params.Set("end", end.Format("2006-01-02T15:04"))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	log.Ctx(ctx).DebugContext(ctx, "fetching flex prices", slog.String("url", u.String()))

	resp, err := f.client.Do(req)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch flex prices", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flex api returned status: %d", resp.StatusCode)
	}

	var data []flexPriceEntry
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to decode flex response", slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	points := make([]types.PricePoint, 0, len(data))
	for _, item := range data {
		ts, err := time.ParseInLocation("2006-01-02T15:04:05", item.StartTime, ptLocation)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to parse flex startTime", slog.String("value", item.StartTime), slog.Any("error", err))
			continue
		}
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			log.Ctx(ctx).WarnContext(ctx, "dropping non-finite flex price", slog.String("startTime", item.StartTime))
			continue
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

	log.Ctx(ctx).DebugContext(
		ctx,
		"fetched flex prices",
		slog.Int("count", len(points)),
		slog.String("start", start.Format(time.RFC3339)),
		slog.String("end", end.Format(time.RFC3339)),
	)
	return points, nil
}

// GetConfirmedPrices returns settled prices fully inside [start, end); hours
// still in progress are excluded.
func (f *FlexAPI) GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error) {
	points, err := f.fetchRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(ptLocation)
	confirmed := make([]types.PricePoint, 0, len(points))
	for _, p := range points {
		if p.TSEnd.After(now) {
			continue
		}
		if p.TSStart.Before(start) || p.TSEnd.After(end) {
			continue
		}
		confirmed = append(confirmed, p)
	}
	return confirmed, nil
}

// GetCurrentPrice returns the latest available hourly price. Results are
// cached per 5-minute block to keep dashboard refreshes off the feed.
func (f *FlexAPI) GetCurrentPrice(ctx context.Context) (types.PricePoint, error) {
	points, err := f.getCachedRecentPoints(ctx)
	if err != nil {
		return types.PricePoint{}, err
	}
	if len(points) == 0 {
		return types.PricePoint{}, fmt.Errorf("no prices returned for current window")
	}

	latest := points[len(points)-1]
	log.Ctx(ctx).DebugContext(
		ctx,
		"got current flex price",
		slog.Float64("price", latest.DollarsPerKWH),
		slog.Time("ts", latest.TSStart),
	)
	return latest, nil
}

func (f *FlexAPI) getCachedRecentPoints(ctx context.Context) ([]types.PricePoint, error) {
	now := time.Now().In(ptLocation)

	f.mu.Lock()
	if !f.lastFetchTime.IsZero() && !now.Truncate(5*time.Minute).After(f.lastFetchTime) {
		points := f.cachedPoints
		f.mu.Unlock()
		return points, nil
	}
	f.mu.Unlock()

	points, err := f.fetchRange(ctx, now.Add(-6*time.Hour), now)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cachedPoints = points
	f.lastFetchTime = now
	f.mu.Unlock()

	return points, nil
}
