package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline end to end",
	Long: `Execute every stage in order for the run date: collect, parse, fetch,
filter, warehouse, extract, qualify. Each stage writes its artifact before the
next starts, so a failed run can be resumed by invoking the remaining stages
individually.

Examples:
  # Full run for today
  leadgen run

  # Skip the relevance filter (warehouse everything fetched)
  leadgen run --skip-filter`,
	RunE: runAll,
}

func init() {
	runCmd.Flags().Bool("skip-filter", false, "skip the relevance filter stage")
	rootCmd.AddCommand(runCmd)
}

func runAll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	skipFilter, _ := cmd.Flags().GetBool("skip-filter")

	p, err := buildPipeline(true)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("date", runDate))

	collectSum, err := p.Collect(ctx, runDate)
	if err != nil {
		return err
	}
	log.Info("collect done", zap.Int("kept", collectSum.Kept))

	parseSum, err := p.Parse(ctx, runDate)
	if err != nil {
		return err
	}
	log.Info("parse done", zap.Int("items", parseSum.Items))

	fetchSum, err := p.Fetch(ctx, runDate)
	if err != nil {
		return err
	}
	log.Info("fetch done",
		zap.Int("fetched", fetchSum.Fetched),
		zap.Int("excluded", fetchSum.Excluded),
		zap.Int("failed", fetchSum.Failed))

	if skipFilter {
		log.Info("filter skipped")
	} else {
		filterSum, err := p.Filter(ctx, runDate)
		if err != nil {
			return err
		}
		log.Info("filter done", zap.Int("kept", filterSum.Kept))
	}

	whSum, err := p.BuildWarehouse(ctx, runDate)
	if err != nil {
		return err
	}
	log.Info("warehouse done", zap.Int("records", whSum.Records))

	extractSum, err := p.ExtractOrganizations(ctx, runDate)
	if err != nil {
		return err
	}
	log.Info("extract done",
		zap.Int("organizations", extractSum.Organizations),
		zap.Int("parse_failures", extractSum.ParseFailures))

	qualifySum, err := p.QualifyLeads(ctx, runDate)
	if err != nil {
		return err
	}
	log.Info("pipeline complete",
		zap.Int("organizations", qualifySum.Organizations),
		zap.Int("leads", qualifySum.Leads))
	return nil
}
