package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opubliq/leadgen/internal/config"
)

var (
	cfg     *config.Config
	runDate string
)

var rootCmd = &cobra.Command{
	Use:   "leadgen",
	Short: "News-driven lead-generation pipeline",
	Long:  "Collects news articles matching configured search signals, extracts the organizations acting in them, and qualifies those organizations as potential public-affairs clients.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if runDate == "" {
			runDate = time.Now().Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", runDate); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", runDate)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&runDate, "date", "", "partition date (YYYY-MM-DD, default today)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
