package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flexpilot/flexpilot/pkg/baseline"
	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usageCSV = `TYPE,DATE,START TIME,END TIME,USAGE (kWh),COST,NOTES
Electric usage,2023-07-17,14:00,14:59,3.0,$0.93,
Electric usage,2023-07-18,14:00,14:59,5.0,$1.55,
Electric usage,2023-07-17,15:00,15:59,1.0,$0.51,
`

func TestHandleUploadHistorical(t *testing.T) {
	s := &Server{bypassAuth: true, usageLocation: time.UTC}

	req := httptest.NewRequest("POST", "/api/usage/historical", strings.NewReader(usageCSV))
	rr := httptest.NewRecorder()
	s.handleUploadHistorical(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Records)
	assert.Equal(t, 2, resp.BaselineSlots)

	// 2023-07-17 and 07-18 are weekdays: hour 14 averages to 4.
	got := s.table.Lookup(time.Date(2024, time.July, 15, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, baseline.SourceExact, got.Source)
	assert.Equal(t, 4.0, got.KWH)
}

func TestHandleUploadCurrent(t *testing.T) {
	s := &Server{bypassAuth: true, usageLocation: time.UTC}

	req := httptest.NewRequest("POST", "/api/usage/current", strings.NewReader(usageCSV))
	rr := httptest.NewRecorder()
	s.handleUploadCurrent(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, s.currentUsage, 3)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Records)
	assert.Equal(t, s.currentUsage[0].Timestamp, resp.Start)
	assert.Equal(t, s.currentUsage[2].Timestamp, resp.End)
}

func TestHandleUploadRejectsInvalid(t *testing.T) {
	s := &Server{bypassAuth: true, usageLocation: time.UTC}

	bad := "TYPE,DATE,START TIME,END TIME,USAGE (kWh),COST,NOTES\n" +
		"Electric usage,2023-07-17,14:00,14:59,oops,$0.93,\n"
	req := httptest.NewRequest("POST", "/api/usage/historical", strings.NewReader(bad))
	rr := httptest.NewRecorder()
	s.handleUploadHistorical(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	req = httptest.NewRequest("POST", "/api/usage/current", strings.NewReader("no header here"))
	rr = httptest.NewRecorder()
	s.handleUploadCurrent(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleBaseline(t *testing.T) {
	s := &Server{bypassAuth: true}
	s.table = baseline.Build([]types.UsageRecord{
		{Timestamp: time.Date(2023, time.July, 17, 14, 0, 0, 0, time.UTC), UsageKWH: 3},
	})

	req := httptest.NewRequest("GET", "/api/baseline", nil)
	rr := httptest.NewRecorder()
	s.handleBaseline(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Slots   int              `json:"slots"`
		Entries []baseline.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Slots)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, baseline.Entry{Hour: 14, DayType: "weekday", AverageKWH: 3}, resp.Entries[0])
}
