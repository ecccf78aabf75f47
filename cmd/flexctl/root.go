package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var timezone string

var rootCmd = &cobra.Command{
	Use:   "flexctl",
	Short: "Compute flex pilot savings from local files",
	Long: `Flexctl runs the same rate and savings computation as the dashboard over
local files: a prior-year usage CSV, a current-period usage CSV, and a
JSON price file, without standing up the HTTP server.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local", "IANA timezone the usage CSV timestamps are in")
}

// loadLocation resolves the --timezone flag.
func loadLocation() (*time.Location, error) {
	return time.LoadLocation(timezone)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
