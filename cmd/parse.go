package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Normalize collected feed items into the raw article table",
	Long: `Read the consolidated item document produced by collect and flatten it
into articles_raw.csv, one row per item. Missing fields are recorded with the
N/A sentinel rather than dropped.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(false)
	if err != nil {
		return err
	}

	sum, err := p.Parse(ctx, runDate)
	if err != nil {
		return err
	}

	zap.L().Info("parse complete",
		zap.String("date", runDate),
		zap.Int("items", sum.Items))
	return nil
}
