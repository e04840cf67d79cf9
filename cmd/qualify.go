package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var qualifyCmd = &cobra.Command{
	Use:   "qualify",
	Short: "Qualify aggregated organizations as sales leads",
	Long: `Ask the language model to judge each extracted organization as a
potential client based on its aggregated mentions: lead or not, a 1-5
score, the anticipated service need, and urgency. Only organizations judged
leads are kept, sorted by score descending.

Outputs marts/<date>/leads.json.`,
	RunE: runQualify,
}

func init() {
	rootCmd.AddCommand(qualifyCmd)
}

func runQualify(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(true)
	if err != nil {
		return err
	}

	sum, err := p.QualifyLeads(ctx, runDate)
	if err != nil {
		return err
	}

	zap.L().Info("qualify complete",
		zap.String("date", runDate),
		zap.Int("organizations", sum.Organizations),
		zap.Int("dropped", sum.Dropped),
		zap.Int("leads", sum.Leads))
	return nil
}
