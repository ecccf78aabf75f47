// Package ingest parses utility usage-export CSVs into usage records. The
// computation engine never sees raw CSV; this is the ingestion collaborator
// that validates values up front so NaN never reaches a cumulative sum.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/flexpilot/flexpilot/pkg/types"
)

// Usage exports carry columns TYPE,DATE,START TIME,END TIME,USAGE (kWh),COST,NOTES
// after a free-form metadata preamble (account name, address, etc).
const (
	headerFirstColumn = "TYPE"

	dateLayout      = "2006-01-02"
	startTimeLayout = "15:04"
	timestampLayout = dateLayout + "T" + startTimeLayout
)

// column indexes within a data row.
const (
	colDate  = 1
	colStart = 2
	colUsage = 4

	minColumns = 5
)

// ParseUsageCSV reads a usage export and returns records sorted
// chronologically, which the savings engine requires. Timestamps are
// interpreted in loc; pass time.Local for household-local data.
//
// Rows with a non-numeric, non-finite, or negative usage value fail the whole
// parse with a types.ValidationError rather than being skipped: a partial
// upload would silently skew the baseline averages.
func ParseUsageCSV(r io.Reader, loc *time.Location) ([]types.UsageRecord, error) {
	if loc == nil {
		loc = time.Local
	}

	cr := csv.NewReader(r)
	// The metadata preamble has rows of varying width.
	cr.FieldsPerRecord = -1

	var records []types.UsageRecord
	inData := false
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading usage csv: %w", err)
		}
		line++

		if !inData {
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), headerFirstColumn) {
				inData = true
			}
			continue
		}
		if len(row) < minColumns {
			return nil, fmt.Errorf("usage csv line %d: expected at least %d columns, got %d", line, minColumns, len(row))
		}

		rec, err := parseRow(row, loc, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if !inData {
		return nil, fmt.Errorf("usage csv has no %q header row", headerFirstColumn)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func parseRow(row []string, loc *time.Location, line int) (types.UsageRecord, error) {
	date := strings.TrimSpace(row[colDate])
	start := strings.TrimSpace(row[colStart])
	ts, err := time.ParseInLocation(timestampLayout, date+"T"+start, loc)
	if err != nil {
		return types.UsageRecord{}, fmt.Errorf("usage csv line %d: invalid timestamp: %w", line, err)
	}

	raw := strings.TrimSpace(row[colUsage])
	usage, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return types.UsageRecord{}, types.ValidationError{
			Field:  "usageKWH",
			Value:  raw,
			Reason: fmt.Sprintf("not a number on line %d", line),
		}
	}
	if math.IsNaN(usage) || math.IsInf(usage, 0) {
		return types.UsageRecord{}, types.ValidationError{
			Field:  "usageKWH",
			Value:  raw,
			Reason: fmt.Sprintf("non-finite on line %d", line),
		}
	}
	if usage < 0 {
		return types.UsageRecord{}, types.ValidationError{
			Field:  "usageKWH",
			Value:  raw,
			Reason: fmt.Sprintf("negative on line %d", line),
		}
	}

	return types.UsageRecord{Timestamp: ts, UsageKWH: usage}, nil
}
