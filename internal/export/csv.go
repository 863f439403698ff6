// Package export writes enrichment results to the delivery formats the
// research team consumes: CSV and XLSX hub-mapping reports.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/helix-group/trials-cli/internal/model"
)

// hubMappingHeader is the column layout of the hub-mapping report.
var hubMappingHeader = []string{"Company_ID", "Company_Name", "Company_Address", "Closest_Hub", "Hub_Distance_km"}

// WriteHubMappingCSV writes proximity results as a CSV report. Companies
// with no hub assignment get empty hub columns.
func WriteHubMappingCSV(path string, results []model.ProximityResult) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(hubMappingHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range results {
		if err := w.Write(hubMappingRow(r)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.CompanyID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

func hubMappingRow(r model.ProximityResult) []string {
	hub := ""
	if r.ClosestHub != nil {
		hub = *r.ClosestHub
	}
	dist := ""
	if r.DistanceKm != nil {
		dist = strconv.FormatFloat(*r.DistanceKm, 'f', -1, 64)
	}
	return []string{r.CompanyID, r.CompanyName, r.Address, hub, dist}
}
