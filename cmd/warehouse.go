package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Extract main article text into the warehouse table",
	Long: `Reduce each stored article page to its main body text, stripping
navigation, scripts, and other boilerplate. Prefers the relevance-filtered
mapping when present. Records whose content cannot be read or yields no text
are kept with empty text so downstream counts stay stable.

Outputs warehouse/articles_<date>.csv.`,
	RunE: runWarehouse,
}

func init() {
	rootCmd.AddCommand(warehouseCmd)
}

func runWarehouse(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(false)
	if err != nil {
		return err
	}

	sum, err := p.BuildWarehouse(ctx, runDate)
	if err != nil {
		return err
	}

	zap.L().Info("warehouse complete",
		zap.String("date", runDate),
		zap.Int("records", sum.Records),
		zap.Int("empty", sum.Empty))
	return nil
}
