package model

// Company identifies a biotech company to be enriched. ID and Address come
// from the source-of-record CSV export.
type Company struct {
	ID      string `json:"company_id"`
	Name    string `json:"company_name"`
	Address string `json:"address,omitempty"`
}

// GeocodedCompany pairs a company with its geocoded coordinates. Nil
// coordinates mean geocoding failed or returned no match; downstream
// consumers must treat that as "unknown location", never as (0, 0).
type GeocodedCompany struct {
	Company
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ProximityResult records the closest hub assignment for a company
// location. Computed once per company, never mutated afterward. Nil fields
// mean either no coordinates were available or no hub fell within the
// configured distance threshold.
type ProximityResult struct {
	CompanyID   string   `json:"company_id"`
	CompanyName string   `json:"company_name"`
	Address     string   `json:"address"`
	ClosestHub  *string  `json:"closest_hub"`
	DistanceKm  *float64 `json:"hub_distance_km"`
}

// CompanyBucket groups the trials attributed to one canonical company in
// the aggregation output.
type CompanyBucket struct {
	TrialCount int     `json:"trial_count"`
	Trials     []Trial `json:"trials"`
}
