package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Score fetched articles for relevance and keep the likely ones",
	Long: `Ask the language model to rate each fetched article's relevance to the
search signals on a 1-5 scale using only its title and source. Articles at or
above filter.threshold are written to mapping_filtered.csv; the rest are
dropped from downstream stages. Unparsable or out-of-range verdicts fall back
to filter.default_score.

This stage is optional: warehouse falls back to the unfiltered mapping when
mapping_filtered.csv is absent.`,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(true)
	if err != nil {
		return err
	}

	sum, err := p.Filter(ctx, runDate)
	if err != nil {
		return err
	}

	zap.L().Info("filter complete",
		zap.String("date", runDate),
		zap.Int("items", sum.Items),
		zap.Int("kept", sum.Kept),
		zap.Int("defaulted", sum.Defaulted))
	return nil
}
