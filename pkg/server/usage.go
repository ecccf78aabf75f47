package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flexpilot/flexpilot/pkg/baseline"
	"github.com/flexpilot/flexpilot/pkg/ingest"
	"github.com/flexpilot/flexpilot/pkg/log"
	"github.com/flexpilot/flexpilot/pkg/types"
)

// Usage exports for a full year run a few MB.
const maxUploadBytes = 32 << 20

type uploadResponse struct {
	Records int       `json:"records"`
	Start   time.Time `json:"start,omitempty"`
	End     time.Time `json:"end,omitempty"`

	// BaselineSlots is set on historical uploads: the number of populated
	// (hour, dayType) averages in the rebuilt subscription table.
	BaselineSlots int `json:"baselineSlots,omitempty"`
}

func (s *Server) parseUploadedUsage(w http.ResponseWriter, r *http.Request) ([]types.UsageRecord, bool) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	records, err := ingest.ParseUsageCSV(r.Body, s.usageLocation)
	if err != nil {
		var verr types.ValidationError
		if errors.As(err, &verr) {
			writeJSONError(w, verr.Error(), http.StatusUnprocessableEntity)
			return nil, false
		}
		log.Ctx(ctx).WarnContext(ctx, "failed to parse usage csv", slog.Any("error", err))
		writeJSONError(w, "invalid usage csv: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if len(records) == 0 {
		writeJSONError(w, "usage csv contained no records", http.StatusBadRequest)
		return nil, false
	}
	return records, true
}

// handleUploadHistorical ingests the prior-year usage export and rebuilds the
// subscription baseline table from it.
func (s *Server) handleUploadHistorical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, ok := s.parseUploadedUsage(w, r)
	if !ok {
		return
	}

	table := baseline.Build(records)

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	log.Ctx(ctx).InfoContext(
		ctx,
		"rebuilt subscription baseline",
		slog.Int("records", len(records)),
		slog.Int("slots", table.Len()),
	)
	writeJSON(w, uploadResponse{
		Records:       len(records),
		Start:         records[0].Timestamp,
		End:           records[len(records)-1].Timestamp,
		BaselineSlots: table.Len(),
	})
}

// handleUploadCurrent ingests the current-period usage the savings ledger is
// computed over.
func (s *Server) handleUploadCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, ok := s.parseUploadedUsage(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	s.currentUsage = records
	s.mu.Unlock()

	log.Ctx(ctx).InfoContext(ctx, "stored current usage", slog.Int("records", len(records)))
	writeJSON(w, uploadResponse{
		Records: len(records),
		Start:   records[0].Timestamp,
		End:     records[len(records)-1].Timestamp,
	})
}

// handleBaseline returns the subscription quantity table for display.
func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	table := s.table
	s.mu.Unlock()

	writeJSON(w, struct {
		Slots   int              `json:"slots"`
		Entries []baseline.Entry `json:"entries"`
	}{
		Slots:   table.Len(),
		Entries: table.Entries(),
	})
}
