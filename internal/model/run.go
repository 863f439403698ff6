package model

import "time"

// RunStatus tracks the lifecycle of an enrichment run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunSummary holds the counts produced by a completed enrichment run.
type RunSummary struct {
	TrialsProcessed    int `json:"trials_processed"`
	KnownCompanies     int `json:"known_companies"`
	UnknownTrials      int `json:"unknown_trials"`
	ExcludedTrials     int `json:"excluded_trials"`
	GeocodedAddresses  int `json:"geocoded_addresses"`
	UnmatchedAddresses int `json:"unmatched_addresses"`
}

// Run is one recorded enrichment run.
type Run struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
