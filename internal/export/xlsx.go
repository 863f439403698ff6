package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/helix-group/trials-cli/internal/model"
)

// WriteHubMappingXLSX writes proximity results as a single-sheet XLSX
// workbook with the same columns as the CSV report.
func WriteHubMappingXLSX(path string, results []model.ProximityResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Hub Mapping")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range hubMappingHeader {
		header.AddCell().SetString(col)
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.CompanyID)
		row.AddCell().SetString(r.CompanyName)
		row.AddCell().SetString(r.Address)
		if r.ClosestHub != nil {
			row.AddCell().SetString(*r.ClosestHub)
		} else {
			row.AddCell().SetString("")
		}
		if r.DistanceKm != nil {
			row.AddCell().SetFloat(*r.DistanceKm)
		} else {
			row.AddCell().SetString("")
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
