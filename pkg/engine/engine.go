// Package engine reconciles a current-period usage series against a flex
// pricing series and a subscription baseline, producing the per-interval and
// cumulative savings ledger the dashboard displays.
package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/flexpilot/flexpilot/pkg/baseline"
	"github.com/flexpilot/flexpilot/pkg/tariff"
	"github.com/flexpilot/flexpilot/pkg/types"
)

// ErrUnsortedInput is returned when usage records are not in chronological
// order. The cumulative column is a left-fold, so order is a hard
// precondition rather than something we silently fold over anyway.
var ErrUnsortedInput = errors.New("usage records must be in chronological order")

// ComputeSavings produces one SavingsRecord per usage record that can be
// aligned to a flex price, in input order. Unaligned records are dropped, so
// the output may be shorter than the input.
//
// For each interval the household pays the dynamic rate only on the
// difference between its usage and its subscription quantity; using less than
// the subscription earns a symmetric credit. Savings is the TOU cost the
// interval would have incurred minus that dynamic cost.
//
// The function is deterministic: identical inputs yield identical output.
func ComputeSavings(records []types.UsageRecord, series types.PricingSeries, table baseline.Table) ([]types.SavingsRecord, error) {
	aligner, err := NewAligner(series)
	if err != nil {
		return nil, err
	}
	return computeWithAligner(records, aligner, table)
}

func computeWithAligner(records []types.UsageRecord, aligner *Aligner, table baseline.Table) ([]types.SavingsRecord, error) {
	if err := validateRecords(records); err != nil {
		return nil, err
	}

	out := make([]types.SavingsRecord, 0, len(records))
	var cumulative float64
	for _, r := range records {
		dynamicRate, ok := aligner.Align(r.Timestamp)
		if !ok {
			continue
		}

		subscription := table.Lookup(r.Timestamp).KWH
		touRate := tariff.Rate(r.Timestamp)
		touCost := r.UsageKWH * touRate

		// Negative when usage is below the subscription quantity,
		// representing a credit at the dynamic rate.
		usageDifference := r.UsageKWH - subscription
		dynamicCost := usageDifference * dynamicRate
		savings := touCost - dynamicCost
		cumulative += savings

		out = append(out, types.SavingsRecord{
			Timestamp:            r.Timestamp,
			UsageKWH:             r.UsageKWH,
			TOURate:              touRate,
			DynamicRate:          dynamicRate,
			SubscriptionQuantity: subscription,
			TOUCost:              touCost,
			DynamicCost:          dynamicCost,
			Savings:              savings,
			CumulativeSavings:    cumulative,
		})
	}
	return out, nil
}

func validateRecords(records []types.UsageRecord) error {
	var prev time.Time
	for i, r := range records {
		if math.IsNaN(r.UsageKWH) || math.IsInf(r.UsageKWH, 0) {
			return types.ValidationError{
				Field:  "usageKWH",
				Value:  fmt.Sprintf("%v", r.UsageKWH),
				Reason: fmt.Sprintf("non-finite usage at %s", r.Timestamp.Format(time.RFC3339)),
			}
		}
		if i > 0 && r.Timestamp.Before(prev) {
			return fmt.Errorf("%w: record %d (%s) precedes record %d (%s)",
				ErrUnsortedInput, i, r.Timestamp.Format(time.RFC3339), i-1, prev.Format(time.RFC3339))
		}
		prev = r.Timestamp
	}
	return nil
}

// Summarize folds a ledger into totals for the dashboard. unmatched is the
// number of usage intervals that were dropped during alignment.
func Summarize(ledger []types.SavingsRecord, unmatched int) types.SavingsSummary {
	var s types.SavingsSummary
	s.MatchedRecords = len(ledger)
	s.UnmatchedRecords = unmatched
	for _, r := range ledger {
		s.TotalTOUCost += r.TOUCost
		s.TotalDynamicCost += r.DynamicCost
		s.TotalSavings += r.Savings
		s.TotalUsageKWH += r.UsageKWH
	}
	if len(ledger) > 0 {
		s.Start = ledger[0].Timestamp
		s.End = ledger[len(ledger)-1].Timestamp
	}
	return s
}
