package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trials-cli",
	Short: "Clinical trial sponsor enrichment pipeline",
	Long:  "Fetches ClinicalTrials.gov studies, attributes them to portfolio companies, classifies trial descriptions via Claude, and maps company locations to biotech hubs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
