package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/helix-group/trials-cli/internal/db"
	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/pkg/geocode"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":         `INSERT INTO runs (id, label, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_run":       `UPDATE runs SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
	"get_run":            `SELECT id, label, status, summary, error, created_at, updated_at FROM runs WHERE id = $1`,
	"get_cached_geocode": `SELECT latitude, longitude, display_name, matched, source FROM geocode_cache WHERE address_hash = $1 AND expires_at > now()`,
	"set_cached_geocode": `INSERT INTO geocode_cache (address_hash, latitude, longitude, display_name, matched, source, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (address_hash) DO UPDATE SET latitude = $2, longitude = $3, display_name = $4, matched = $5, source = $6, cached_at = $7, expires_at = $8`,
	"list_proximity":     `SELECT company_id, company_name, address, closest_hub, hub_distance_km FROM proximity_results WHERE run_id = $1 ORDER BY company_id`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	label      TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS proximity_results (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	company_id      TEXT NOT NULL,
	company_name    TEXT NOT NULL,
	address         TEXT NOT NULL DEFAULT '',
	closest_hub     TEXT,
	hub_distance_km DOUBLE PRECISION,
	PRIMARY KEY (run_id, company_id)
);

CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	matched      BOOLEAN NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	cached_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_proximity_results_run_id ON proximity_results(run_id);
CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) CreateRun(ctx context.Context, label string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, label, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, label, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Label:     label,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusComplete), summaryJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, runErr string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var summaryJSON []byte
	var runErr *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, label, status, summary, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Label, &r.Status, &summaryJSON, &runErr, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if summaryJSON != nil {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal(summaryJSON, r.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
	}
	if runErr != nil {
		r.Error = *runErr
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, label, status, summary, error, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var summaryJSON []byte
		var runErr *string

		if err := rows.Scan(&r.ID, &r.Label, &r.Status, &summaryJSON, &runErr, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if summaryJSON != nil {
			r.Summary = &model.RunSummary{}
			if err := json.Unmarshal(summaryJSON, r.Summary); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal summary")
			}
		}
		if runErr != nil {
			r.Error = *runErr
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveProximityResults(ctx context.Context, runID string, results []model.ProximityResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{runID, r.CompanyID, r.CompanyName, r.Address, r.ClosestHub, r.DistanceKm})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "proximity_results",
		Columns:      []string{"run_id", "company_id", "company_name", "address", "closest_hub", "hub_distance_km"},
		ConflictKeys: []string{"run_id", "company_id"},
	}, rows)
	return eris.Wrap(err, "postgres: save proximity results")
}

func (s *PostgresStore) ListProximityResults(ctx context.Context, runID string) ([]model.ProximityResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_id, company_name, address, closest_hub, hub_distance_km
		 FROM proximity_results WHERE run_id = $1 ORDER BY company_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list proximity results")
	}
	defer rows.Close()

	var results []model.ProximityResult
	for rows.Next() {
		var r model.ProximityResult
		if err := rows.Scan(&r.CompanyID, &r.CompanyName, &r.Address, &r.ClosestHub, &r.DistanceKm); err != nil {
			return nil, eris.Wrap(err, "postgres: scan proximity result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: list proximity results iterate")
}

func (s *PostgresStore) GetCachedGeocode(ctx context.Context, key string) (*geocode.Result, bool, error) {
	var r geocode.Result
	err := s.pool.QueryRow(ctx,
		`SELECT latitude, longitude, display_name, matched, source FROM geocode_cache
		 WHERE address_hash = $1 AND expires_at > now()`,
		key,
	).Scan(&r.Latitude, &r.Longitude, &r.DisplayName, &r.Matched, &r.Source)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "postgres: get cached geocode")
	}
	return &r, true, nil
}

func (s *PostgresStore) SetCachedGeocode(ctx context.Context, key string, result *geocode.Result, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO geocode_cache (address_hash, latitude, longitude, display_name, matched, source, cached_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (address_hash) DO UPDATE SET
			latitude = $2, longitude = $3, display_name = $4, matched = $5, source = $6, cached_at = $7, expires_at = $8`,
		key, result.Latitude, result.Longitude, result.DisplayName, result.Matched, result.Source, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached geocode")
}

func (s *PostgresStore) DeleteExpiredGeocodes(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM geocode_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired geocodes")
	}
	return int(tag.RowsAffected()), nil
}
