package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/hodl/render"
	"github.com/rustyeddy/hodl/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Daily and all-time stats over closed positions",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var summaryDays int

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().IntVarP(&summaryDays, "days", "d", 0, "trailing window in days (default from config)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	bk, cfg, cleanup, err := openBook()
	if err != nil {
		return err
	}
	defer cleanup()

	closed, err := bk.Closed()
	if err != nil {
		return err
	}

	days := cfg.Report.WindowDays
	if summaryDays > 0 {
		days = summaryDays
	}

	fmt.Print(render.Summary(report.Daily(closed, time.Now(), days)))
	return nil
}
