package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/internal/export"
	"github.com/helix-group/trials-cli/internal/geo"
	"github.com/helix-group/trials-cli/internal/geomap"
	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/pkg/geocode"
)

var (
	geoproxCompanies string
	geoproxOutputDir string
	geoproxLabel     string
	geoproxThreshold float64
)

var geoproxCmd = &cobra.Command{
	Use:   "geoprox",
	Short: "Geocode companies and assign closest hubs",
	Long: `Geocodes each company address, assigns the closest hub within the
distance threshold, persists the results, and writes the hub-mapping
CSV/XLSX reports plus a GeoJSON map of companies and hubs.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("geoprox"); err != nil {
			return err
		}
		ctx := cmd.Context()

		hubs, err := geo.LoadHubs(cfg.Hubs.File)
		if err != nil {
			return err
		}

		companies, err := parseCompaniesCSV(geoproxCompanies)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if pruned, err := st.DeleteExpiredGeocodes(ctx); err != nil {
			zap.L().Warn("geoprox: prune geocode cache", zap.Error(err))
		} else if pruned > 0 {
			zap.L().Info("geoprox: pruned expired geocodes", zap.Int("count", pruned))
		}

		run, err := st.CreateRun(ctx, geoproxLabel)
		if err != nil {
			return err
		}

		threshold := geoproxThreshold
		if threshold == 0 {
			threshold = cfg.Hubs.ThresholdKm
		}

		results, geocoded, summary, err := resolveProximity(ctx, newGeocoder(st), companies, hubs, threshold)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("geoprox: record failure", zap.Error(failErr))
			}
			return err
		}

		if err := st.SaveProximityResults(ctx, run.ID, results); err != nil {
			return err
		}

		outDir := geoproxOutputDir
		if outDir == "" {
			outDir = cfg.Output.Dir
		}
		if err := export.WriteHubMappingCSV(filepath.Join(outDir, "hub_mapping.csv"), results); err != nil {
			return err
		}
		if err := export.WriteHubMappingXLSX(filepath.Join(outDir, "hub_mapping.xlsx"), results); err != nil {
			return err
		}
		if err := geomap.Write(filepath.Join(outDir, "map.geojson"), geocoded, hubs); err != nil {
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, summary); err != nil {
			return err
		}

		zap.L().Info("geoprox complete",
			zap.String("run_id", run.ID),
			zap.Int("companies", len(companies)),
			zap.Int("geocoded", summary.GeocodedAddresses),
			zap.Int("unmatched", summary.UnmatchedAddresses),
			zap.String("output_dir", outDir),
		)
		return nil
	},
}

// resolveProximity geocodes company addresses in bulk and maps each company
// to its closest hub. Companies whose address could not be geocoded stay in
// the result set with nil hub fields.
func resolveProximity(ctx context.Context, gc geocode.Client, companies []model.Company, hubs []geo.Hub, thresholdKm float64) ([]model.ProximityResult, []model.GeocodedCompany, *model.RunSummary, error) {
	addresses := make([]string, len(companies))
	for i, c := range companies {
		addresses[i] = c.Address
	}

	locs, err := gc.BatchGeocode(ctx, addresses)
	if err != nil {
		return nil, nil, nil, err
	}

	summary := &model.RunSummary{}
	results := make([]model.ProximityResult, len(companies))
	geocoded := make([]model.GeocodedCompany, len(companies))
	for i, c := range companies {
		g := model.GeocodedCompany{Company: c}
		if locs[i].Matched {
			lat, lon := locs[i].Latitude, locs[i].Longitude
			g.Latitude, g.Longitude = &lat, &lon
			summary.GeocodedAddresses++
		} else {
			summary.UnmatchedAddresses++
		}
		geocoded[i] = g
		results[i] = geo.Resolve(g, hubs, thresholdKm)
	}
	return results, geocoded, summary, nil
}

func init() {
	geoproxCmd.Flags().StringVar(&geoproxCompanies, "companies", "resources/companies.csv", "company CSV export")
	geoproxCmd.Flags().StringVar(&geoproxOutputDir, "output-dir", "", "output directory (default from config)")
	geoproxCmd.Flags().StringVar(&geoproxLabel, "label", "geoprox", "run label")
	geoproxCmd.Flags().Float64Var(&geoproxThreshold, "threshold", 0, "max hub distance in km (0 = no cutoff)")
	rootCmd.AddCommand(geoproxCmd)
}
