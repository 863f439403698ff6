package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect enrichment run history",
	Long:  "Commands for listing and viewing recorded enrichment runs and their results.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrichment runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs results --

var runsResultsCmd = &cobra.Command{
	Use:   "results <run-id>",
	Short: "List a run's hub-proximity results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		results, err := st.ListProximityResults(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs results")
		}

		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No results for this run.")
			return nil
		}

		formatProximityResults(os.Stdout, results)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsResultsCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tLABEL\tSTATUS\tGEOCODED\tUNMATCHED\tCREATED\tDURATION")
	for _, r := range runs {
		geocoded, unmatched := "-", "-"
		if r.Summary != nil {
			geocoded = fmt.Sprintf("%d", r.Summary.GeocodedAddresses)
			unmatched = fmt.Sprintf("%d", r.Summary.UnmatchedAddresses)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Label,
			r.Status,
			geocoded,
			unmatched,
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second),
		)
	}
	_ = w.Flush()
}

// formatProximityResults writes a tabular list of proximity results to out.
func formatProximityResults(out io.Writer, results []model.ProximityResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMPANY_ID\tCOMPANY\tCLOSEST_HUB\tDISTANCE_KM")
	for _, r := range results {
		hub, dist := "-", "-"
		if r.ClosestHub != nil {
			hub = *r.ClosestHub
		}
		if r.DistanceKm != nil {
			dist = fmt.Sprintf("%.1f", *r.DistanceKm)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.CompanyID, r.CompanyName, hub, dist)
	}
	_ = w.Flush()
}
