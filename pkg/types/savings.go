package types

import "time"

// SavingsRecord is one row of the savings ledger: what a usage interval would
// have cost under the fixed TOU tariff, what it cost under the flex pilot, and
// the running difference. One record is emitted per usage interval that could
// be matched to a flex price.
type SavingsRecord struct {
	Timestamp time.Time `json:"timestamp"`
	UsageKWH  float64   `json:"usageKWH"`

	TOURate     float64 `json:"touRate"`
	DynamicRate float64 `json:"dynamicRate"`

	// SubscriptionQuantity is the household's prior-year average usage for
	// this hour and day type. Usage below it is credited at the dynamic rate.
	SubscriptionQuantity float64 `json:"subscriptionQuantity"`

	TOUCost     float64 `json:"touCost"`
	DynamicCost float64 `json:"dynamicCost"`

	Savings           float64 `json:"savings"`
	CumulativeSavings float64 `json:"cumulativeSavings"`
}

// SavingsSummary aggregates a ledger for the dashboard's totals row.
type SavingsSummary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	TotalTOUCost     float64 `json:"totalTOUCost"`
	TotalDynamicCost float64 `json:"totalDynamicCost"`
	TotalSavings     float64 `json:"totalSavings"`
	TotalUsageKWH    float64 `json:"totalUsageKWH"`

	// MatchedRecords counts emitted ledger rows; UnmatchedRecords counts usage
	// intervals dropped because no flex price could be aligned to them.
	MatchedRecords   int `json:"matchedRecords"`
	UnmatchedRecords int `json:"unmatchedRecords"`
}
