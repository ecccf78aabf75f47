package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/flexpilot/flexpilot/pkg/baseline"
	"github.com/flexpilot/flexpilot/pkg/engine"
	"github.com/flexpilot/flexpilot/pkg/ingest"
	"github.com/flexpilot/flexpilot/pkg/pricing"
	"github.com/flexpilot/flexpilot/pkg/types"
	"github.com/spf13/cobra"
)

var (
	historicalPath string
	usagePath      string
	pricesPath     string
	summaryOnly    bool
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the savings ledger for a usage period",
	Long: `Computes, for each usage interval, what it would have cost under the fixed
TOU tariff versus the flex pilot, and prints the ledger with a running total.
Without --historical the subscription baseline is empty and the full usage
is billed at the flex rate.`,
	RunE: runCompute,
}

func init() {
	rootCmd.AddCommand(computeCmd)
	computeCmd.Flags().StringVar(&historicalPath, "historical", "", "prior-year usage CSV for the subscription baseline")
	computeCmd.Flags().StringVar(&usagePath, "usage", "", "current-period usage CSV")
	computeCmd.Flags().StringVar(&pricesPath, "prices", "", "JSON file of hourly flex prices")
	computeCmd.Flags().BoolVar(&summaryOnly, "summary", false, "print only the totals")
	_ = computeCmd.MarkFlagRequired("usage")
	_ = computeCmd.MarkFlagRequired("prices")
}

func runCompute(cmd *cobra.Command, args []string) error {
	loc, err := loadLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	var table baseline.Table
	if historicalPath != "" {
		records, err := readUsageFile(historicalPath, loc)
		if err != nil {
			return fmt.Errorf("historical usage: %w", err)
		}
		table = baseline.Build(records)
	} else {
		table = baseline.Build(nil)
	}

	usage, err := readUsageFile(usagePath, loc)
	if err != nil {
		return fmt.Errorf("current usage: %w", err)
	}

	pf, err := os.Open(pricesPath)
	if err != nil {
		return fmt.Errorf("opening prices: %w", err)
	}
	defer pf.Close()
	points, err := pricing.ReadPointsJSON(pf, loc)
	if err != nil {
		return fmt.Errorf("prices: %w", err)
	}

	ledger, err := engine.ComputeSavings(usage, pricing.SeriesFromPoints(points), table)
	if err != nil {
		return fmt.Errorf("computing savings: %w", err)
	}
	summary := engine.Summarize(ledger, len(usage)-len(ledger))

	if !summaryOnly {
		printLedger(ledger)
	}
	printSummary(summary)
	return nil
}

func readUsageFile(path string, loc *time.Location) ([]types.UsageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ParseUsageCSV(f, loc)
}

func printLedger(ledger []types.SavingsRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tUSAGE kWh\tTOU $/kWh\tFLEX $/kWh\tSUBSCRIPTION kWh\tTOU $\tFLEX $\tSAVED $\tTOTAL $")
	for _, r := range ledger {
		fmt.Fprintf(w, "%s\t%.2f\t%.5f\t%.5f\t%.2f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.UsageKWH,
			r.TOURate,
			r.DynamicRate,
			r.SubscriptionQuantity,
			r.TOUCost,
			r.DynamicCost,
			r.Savings,
			r.CumulativeSavings,
		)
	}
	w.Flush()
}

func printSummary(s types.SavingsSummary) {
	fmt.Printf("\nintervals matched: %d (dropped %d without a flex price)\n", s.MatchedRecords, s.UnmatchedRecords)
	fmt.Printf("usage: %s kWh\n", humanize.CommafWithDigits(s.TotalUsageKWH, 2))
	fmt.Printf("TOU cost: $%s\n", humanize.CommafWithDigits(s.TotalTOUCost, 2))
	fmt.Printf("flex cost: $%s\n", humanize.CommafWithDigits(s.TotalDynamicCost, 2))
	fmt.Printf("savings: $%s\n", humanize.CommafWithDigits(s.TotalSavings, 2))
}
