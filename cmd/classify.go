package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helix-group/trials-cli/internal/classify"
	"github.com/helix-group/trials-cli/internal/config"
	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/pkg/llm"
)

var (
	classifyInput       string
	classifyCategories  string
	classifyOutput      string
	classifyConcurrency int
)

// classifyRow is one trial's encoded feature row, kept with its position
// so concurrent classification preserves input order.
type classifyRow struct {
	company string
	trial   model.Trial
	found   []string
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify known-company trials via Claude",
	Long: `Reads the known-companies aggregation output, classifies each trial
description against the category vocabulary, and writes a one-hot encoded
feature CSV.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		data, err := os.ReadFile(classifyInput)
		if err != nil {
			return eris.Wrapf(err, "classify: read %s", classifyInput)
		}
		var known map[string]model.CompanyBucket
		if err := json.Unmarshal(data, &known); err != nil {
			return eris.Wrap(err, "classify: parse known companies")
		}

		vocab, err := config.LoadLines(classifyCategories)
		if err != nil {
			return eris.Wrap(err, "classify: load categories")
		}

		classifier := classify.New(llm.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model,
			classify.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)))

		var rows []classifyRow
		for company, bucket := range known {
			for _, trial := range bucket.Trials {
				rows = append(rows, classifyRow{company: company, trial: trial})
			}
		}

		eg, gCtx := errgroup.WithContext(cmd.Context())
		eg.SetLimit(classifyConcurrency)
		for i := range rows {
			eg.Go(func() error {
				rows[i].found = classifier.Classify(gCtx, "trial", rows[i].trial.Description(), vocab)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return eris.Wrap(err, "classify: run")
		}

		if err := writeClassifyCSV(classifyOutput, rows, vocab); err != nil {
			return err
		}

		zap.L().Info("classify complete",
			zap.Int("trials", len(rows)),
			zap.Int("categories", len(vocab)),
			zap.String("output", classifyOutput),
		)
		return nil
	},
}

func writeClassifyCSV(path string, rows []classifyRow, vocab []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "classify: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)

	header := []string{"Company", "NCT ID"}
	header = append(header, classify.PhaseColumns...)
	header = append(header, "Interventional", "Observational", "Arms",
		"Accepts Healthy Volunteers", "FDA Regulated Drug", "FDA Regulated Device", "DSMB Present")
	header = append(header, vocab...)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "classify: write csv header")
	}

	for _, row := range rows {
		t := row.trial
		rec := []string{row.company, t.NCTID}

		phases := classify.OneHotPhases(t.Phases)
		for _, col := range classify.PhaseColumns {
			rec = append(rec, strconv.Itoa(phases[col]))
		}

		studyType := classify.OneHotStudyType(t.StudyType)
		rec = append(rec,
			strconv.Itoa(studyType["Interventional"]),
			strconv.Itoa(studyType["Observational"]),
			strconv.Itoa(classify.ArmsCount(t.Arms)),
			strconv.Itoa(classify.OneHotBool(t.AcceptsHealthy)),
			strconv.Itoa(classify.OneHotBool(t.FDARegulatedDrug)),
			strconv.Itoa(classify.OneHotBool(t.FDARegulatedDevice)),
			strconv.Itoa(classify.OneHotBool(t.DSMBPresent)),
		)

		categories := classify.OneHot(row.found, vocab)
		for _, c := range vocab {
			rec = append(rec, strconv.Itoa(categories[c]))
		}

		if err := w.Write(rec); err != nil {
			return eris.Wrapf(err, "classify: write csv row %s", t.NCTID)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "classify: flush csv")
}

func init() {
	classifyCmd.Flags().StringVar(&classifyInput, "input", "output/known_companies.json", "known companies JSON")
	classifyCmd.Flags().StringVar(&classifyCategories, "categories", "resources/categories.txt", "category vocabulary file")
	classifyCmd.Flags().StringVar(&classifyOutput, "output", "output/classified.csv", "output CSV path")
	classifyCmd.Flags().IntVar(&classifyConcurrency, "concurrency", 4, "max parallel classification calls")
	rootCmd.AddCommand(classifyCmd)
}
