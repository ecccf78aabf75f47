package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/flexpilot/flexpilot/pkg/engine"
	"github.com/flexpilot/flexpilot/pkg/log"
	"github.com/flexpilot/flexpilot/pkg/pricing"
	"github.com/flexpilot/flexpilot/pkg/tariff"
	"github.com/flexpilot/flexpilot/pkg/types"
)

type savingsResponse struct {
	Records []types.SavingsRecord `json:"records"`
	Summary types.SavingsSummary  `json:"summary"`
}

// handleSavings fetches the flex pricing series for the requested range and
// reconciles the uploaded current usage against it and the baseline.
func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSONError(w, "invalid time range: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	table := s.table
	usage := s.currentUsage
	s.mu.Unlock()

	if len(usage) == 0 {
		writeJSONError(w, "no current usage uploaded", http.StatusConflict)
		return
	}

	// Uploaded usage is sorted, so the range filter keeps it ordered.
	inRange := make([]types.UsageRecord, 0, len(usage))
	for _, rec := range usage {
		if rec.Timestamp.Before(start) || !rec.Timestamp.Before(end) {
			continue
		}
		inRange = append(inRange, rec)
	}

	points, err := s.pricing.GetConfirmedPrices(ctx, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get flex prices", slog.Any("error", err))
		writeJSONError(w, "failed to get flex prices", http.StatusBadGateway)
		return
	}

	ledger, err := engine.ComputeSavings(inRange, pricing.SeriesFromPoints(points), table)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to compute savings", slog.Any("error", err))
		writeJSONError(w, "failed to compute savings", http.StatusInternalServerError)
		return
	}

	setHistoryCacheControl(w, end)
	writeJSON(w, savingsResponse{
		Records: ledger,
		Summary: engine.Summarize(ledger, len(inRange)-len(ledger)),
	})
}

type ratePoint struct {
	TSStart       time.Time `json:"tsStart"`
	TSEnd         time.Time `json:"tsEnd"`
	DollarsPerKWH float64   `json:"dollarsPerKWH"`
	Season        string    `json:"season"`
	Period        string    `json:"period"`
}

// handleRates returns the fixed TOU rate for each hour of the range so the
// dashboard can overlay it on the flex price curve.
func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSONError(w, "invalid time range: "+err.Error(), http.StatusBadRequest)
		return
	}

	var rates []ratePoint
	for current := start.Truncate(time.Hour); current.Before(end); current = current.Add(time.Hour) {
		rates = append(rates, ratePoint{
			TSStart:       current,
			TSEnd:         current.Add(time.Hour),
			DollarsPerKWH: tariff.Rate(current),
			Season:        tariff.SeasonOf(current).String(),
			Period:        tariff.PeriodOf(current.Hour()).String(),
		})
	}

	setHistoryCacheControl(w, end)
	writeJSON(w, rates)
}

// handleCurrentPrice proxies the latest flex price for the dashboard header.
func (s *Server) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	point, err := s.pricing.GetCurrentPrice(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get current flex price", slog.Any("error", err))
		writeJSONError(w, "failed to get current price", http.StatusBadGateway)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=60")
	writeJSON(w, point)
}
