// Package geomap renders geocoded companies and hubs as GeoJSON for map
// tooling.
package geomap

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/helix-group/trials-cli/internal/geo"
	"github.com/helix-group/trials-cli/internal/model"
)

// FeatureCollection builds a GeoJSON feature collection of company and
// hub point features. Companies without coordinates are skipped.
func FeatureCollection(companies []model.GeocodedCompany, hubs []geo.Hub) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}

	for _, c := range companies {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       c.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{*c.Longitude, *c.Latitude}),
			Properties: map[string]any{
				"kind":    "company",
				"name":    c.Name,
				"address": c.Address,
			},
		})
	}

	for _, h := range hubs {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{h.Longitude, h.Latitude}),
			Properties: map[string]any{
				"kind": "hub",
				"name": h.Name,
			},
		})
	}

	return fc
}

// Write renders the feature collection to a GeoJSON file.
func Write(path string, companies []model.GeocodedCompany, hubs []geo.Hub) error {
	data, err := json.MarshalIndent(FeatureCollection(companies, hubs), "", "  ")
	if err != nil {
		return eris.Wrap(err, "geomap: marshal feature collection")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "geomap: create dir %s", dir)
		}
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "geomap: write %s", path)
}
