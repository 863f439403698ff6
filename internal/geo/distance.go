package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Distance returns the great-circle distance in kilometers between two
// points given in decimal degrees, via the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
