package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/flexpilot/flexpilot/pkg/tariff"
	"github.com/spf13/cobra"
)

var ratesDate string

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the TOU rate schedule for a date",
	RunE:  runRates,
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.Flags().StringVar(&ratesDate, "date", "", "date to print rates for (YYYY-MM-DD, default today)")
}

func runRates(cmd *cobra.Command, args []string) error {
	loc, err := loadLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	day := time.Now().In(loc)
	if ratesDate != "" {
		day, err = time.ParseInLocation("2006-01-02", ratesDate, loc)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", ratesDate, err)
		}
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	fmt.Printf("%s (%s)\n", day.Format("2006-01-02"), tariff.SeasonOf(day))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOUR\tPERIOD\t$/kWh")
	for h := 0; h < 24; h++ {
		ts := day.Add(time.Duration(h) * time.Hour)
		fmt.Fprintf(w, "%02d:00\t%s\t%.5f\n", h, tariff.PeriodOf(h), tariff.Rate(ts))
	}
	return w.Flush()
}
