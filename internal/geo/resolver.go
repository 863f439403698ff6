package geo

import "github.com/helix-group/trials-cli/internal/model"

// Closest finds the nearest hub to the given point by linear scan. The
// strictly-less-than comparison means the first hub in iteration order wins
// ties, which keeps results reproducible for a fixed hub file.
//
// When thresholdKm is positive and the nearest hub lies beyond it, the
// location is "too far from any hub" and ok is false. A zero or negative
// threshold applies no cutoff. Callers with missing coordinates must not
// invoke Closest at all; short-circuit to an unresolved result instead.
func Closest(lat, lon float64, hubs []Hub, thresholdKm float64) (name string, distanceKm float64, ok bool) {
	if len(hubs) == 0 {
		return "", 0, false
	}

	minDist := -1.0
	for _, h := range hubs {
		d := Distance(lat, lon, h.Latitude, h.Longitude)
		if minDist < 0 || d < minDist {
			minDist = d
			name = h.Name
		}
	}

	if thresholdKm > 0 && minDist > thresholdKm {
		return "", 0, false
	}
	return name, minDist, true
}

// Resolve computes the proximity result for a geocoded company, applying
// the missing-coordinates short circuit.
func Resolve(gc model.GeocodedCompany, hubs []Hub, thresholdKm float64) model.ProximityResult {
	res := model.ProximityResult{
		CompanyID:   gc.ID,
		CompanyName: gc.Name,
		Address:     gc.Address,
	}
	if gc.Latitude == nil || gc.Longitude == nil {
		return res
	}
	name, dist, ok := Closest(*gc.Latitude, *gc.Longitude, hubs, thresholdKm)
	if !ok {
		return res
	}
	res.ClosestHub = &name
	res.DistanceKm = &dist
	return res
}
