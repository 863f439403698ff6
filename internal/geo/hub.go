// Package geo holds the hub reference set and the great-circle proximity
// resolver used to assign companies to their nearest biotech hub.
package geo

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Hub is a fixed reference point. The hub set is loaded once at startup
// and read-only afterward, so it is safe to share across goroutines.
type Hub struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LoadHubs reads the hub reference CSV (columns: city,latitude,longitude,
// header required). Rows with unparseable coordinates are skipped with a
// warning; a missing file is fatal to the caller.
func LoadHubs(path string) ([]Hub, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open hub file %s", path)
	}
	defer f.Close()

	hubs, err := readHubs(f)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read hub file %s", path)
	}
	return hubs, nil
}

func readHubs(r io.Reader) ([]Hub, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "geo: parse csv")
	}
	if len(records) == 0 {
		return nil, eris.New("geo: hub file is empty")
	}

	var hubs []Hub
	for i, rec := range records[1:] { // skip header
		if len(rec) < 3 {
			zap.L().Warn("geo: skipping short hub row", zap.Int("row", i+2))
			continue
		}
		lat, latErr := strconv.ParseFloat(rec[1], 64)
		lon, lonErr := strconv.ParseFloat(rec[2], 64)
		if latErr != nil || lonErr != nil {
			zap.L().Warn("geo: skipping hub row with bad coordinates",
				zap.Int("row", i+2),
				zap.String("city", rec[0]),
			)
			continue
		}
		hubs = append(hubs, Hub{Name: rec[0], Latitude: lat, Longitude: lon})
	}
	if len(hubs) == 0 {
		return nil, eris.New("geo: hub file contains no usable rows")
	}
	return hubs, nil
}
