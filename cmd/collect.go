package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect news feed items for each configured search signal",
	Long: `Query the news feed endpoint once per configured search signal, keep
items published inside the collection window, deduplicate by link, and write
the consolidated item document for the run date.

Raw per-signal responses are kept under lake/rss/<date>/ for inspection.

Examples:
  # Collect for today
  leadgen collect

  # Re-collect a past date
  leadgen collect --date 2026-08-15`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(false)
	if err != nil {
		return err
	}

	sum, err := p.Collect(ctx, runDate)
	if err != nil {
		return err
	}

	zap.L().Info("collect complete",
		zap.String("date", runDate),
		zap.Int("signals", sum.Signals),
		zap.Int("failed_signals", sum.Failed),
		zap.Int("fetched", sum.Fetched),
		zap.Int("out_of_window", sum.OutOfWindow),
		zap.Int("duplicates", sum.Duplicates),
		zap.Int("kept", sum.Kept))
	return nil
}
