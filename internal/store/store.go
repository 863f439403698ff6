// Package store persists enrichment runs, proximity results, and the
// geocode cache. Two backends are provided: SQLite for local runs and
// Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/pkg/geocode"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, label string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error
	FailRun(ctx context.Context, runID string, runErr string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Proximity results
	SaveProximityResults(ctx context.Context, runID string, results []model.ProximityResult) error
	ListProximityResults(ctx context.Context, runID string) ([]model.ProximityResult, error)

	// Geocode cache
	GetCachedGeocode(ctx context.Context, key string) (*geocode.Result, bool, error)
	SetCachedGeocode(ctx context.Context, key string, result *geocode.Result, ttl time.Duration) error
	DeleteExpiredGeocodes(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// GeocodeCache adapts a Store to the geocode.Cache interface.
type GeocodeCache struct {
	store Store
	ttl   time.Duration
}

// NewGeocodeCache wraps a store as a geocode result cache with the
// given TTL for new entries.
func NewGeocodeCache(s Store, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{store: s, ttl: ttl}
}

// Get implements geocode.Cache.
func (c *GeocodeCache) Get(ctx context.Context, key string) (*geocode.Result, bool, error) {
	return c.store.GetCachedGeocode(ctx, key)
}

// Put implements geocode.Cache.
func (c *GeocodeCache) Put(ctx context.Context, key string, result *geocode.Result) error {
	return c.store.SetCachedGeocode(ctx, key, result, c.ttl)
}
