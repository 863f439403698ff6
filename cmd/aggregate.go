package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/aggregate"
)

var (
	aggregateInput     string
	aggregateOutputDir string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Attribute trials to known companies",
	Long: `Matches each trial's lead sponsor and collaborators against the
company list and writes the aggregation outputs: known companies with
their trials, unknown trials, the numbered lead-sponsor report, and a
collision report for ambiguous name keys.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("aggregate"); err != nil {
			return err
		}

		trials, err := loadTrialsFile(aggregateInput)
		if err != nil {
			return err
		}

		matcher, err := newMatcher()
		if err != nil {
			return err
		}

		result := aggregate.Run(matcher, trials)

		outDir := aggregateOutputDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		if err := result.WriteKnownCompanies(filepath.Join(outDir, "known_companies.json")); err != nil {
			return eris.Wrap(err, "aggregate: write known companies")
		}
		if err := result.WriteUnknownTrials(filepath.Join(outDir, "unknown_trials.json")); err != nil {
			return eris.Wrap(err, "aggregate: write unknown trials")
		}
		if err := result.WriteLeadSponsors(filepath.Join(outDir, "lead_sponsors.txt")); err != nil {
			return eris.Wrap(err, "aggregate: write lead sponsors")
		}
		if collisions := matcher.Collisions(); len(collisions) > 0 {
			if err := aggregate.WriteCollisionReport(filepath.Join(outDir, "collisions.txt"), collisions); err != nil {
				return eris.Wrap(err, "aggregate: write collision report")
			}
		}

		zap.L().Info("aggregate complete",
			zap.Int("trials", len(trials)),
			zap.Int("known_companies", len(result.Known)),
			zap.Int("unknown_trials", len(result.Unknown)),
			zap.Int("excluded", result.Excluded),
			zap.String("output_dir", outDir),
		)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateInput, "input", "trials.json", "flattened trials JSON")
	aggregateCmd.Flags().StringVar(&aggregateOutputDir, "output-dir", "", "output directory (default from config)")
	rootCmd.AddCommand(aggregateCmd)
}
