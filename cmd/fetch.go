package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/ingest"
)

var (
	fetchCondition string
	fetchOutput    string
	fetchLimit     int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch studies from ClinicalTrials.gov",
	Long: `Pages through the ClinicalTrials.gov v2 studies API and writes the
flattened trial records as JSON.

Examples:
  trials-cli fetch --condition "glioblastoma" --output trials.json
  trials-cli fetch --output trials.json --limit 500`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		client := ingest.NewClient(
			ingest.WithBaseURL(cfg.Fetch.BaseURL),
			ingest.WithPageSize(cfg.Fetch.PageSize),
			ingest.WithRateLimit(cfg.Fetch.RateLimitRPS),
			ingest.WithCondition(fetchCondition),
		)

		trials, err := client.FetchAll(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "fetch: download studies")
		}

		if fetchLimit > 0 && fetchLimit < len(trials) {
			trials = trials[:fetchLimit]
		}

		if err := writeTrialsFile(fetchOutput, trials); err != nil {
			return err
		}

		zap.L().Info("fetch complete",
			zap.Int("trials", len(trials)),
			zap.String("output", fetchOutput),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCondition, "condition", "", "condition query (query.cond)")
	fetchCmd.Flags().StringVar(&fetchOutput, "output", "trials.json", "output JSON path")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "keep only the first N trials (0 = all)")
	rootCmd.AddCommand(fetchCmd)
}
