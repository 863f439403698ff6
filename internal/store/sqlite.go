package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/helix-group/trials-cli/internal/model"
	"github.com/helix-group/trials-cli/pkg/geocode"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS proximity_results (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	company_id      TEXT NOT NULL,
	company_name    TEXT NOT NULL,
	address         TEXT NOT NULL DEFAULT '',
	closest_hub     TEXT,
	hub_distance_km REAL,
	PRIMARY KEY (run_id, company_id)
);

CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	matched      INTEGER NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_proximity_results_run_id ON proximity_results(run_id);
CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, label string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, label, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, label, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Label:     label,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, summary = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), string(summaryJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, runErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, status, summary, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, label, status, summary, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveProximityResults(ctx context.Context, runID string, results []model.ProximityResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO proximity_results (run_id, company_id, company_name, address, closest_hub, hub_distance_km)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, company_id) DO UPDATE SET
			company_name = excluded.company_name,
			address = excluded.address,
			closest_hub = excluded.closest_hub,
			hub_distance_km = excluded.hub_distance_km`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare proximity insert")
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, r.CompanyID, r.CompanyName, r.Address, r.ClosestHub, r.DistanceKm); err != nil {
			return eris.Wrapf(err, "sqlite: insert proximity result %s", r.CompanyID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit proximity results")
}

func (s *SQLiteStore) ListProximityResults(ctx context.Context, runID string) ([]model.ProximityResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company_id, company_name, address, closest_hub, hub_distance_km
		 FROM proximity_results WHERE run_id = ? ORDER BY company_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list proximity results")
	}
	defer rows.Close()

	var results []model.ProximityResult
	for rows.Next() {
		var r model.ProximityResult
		if err := rows.Scan(&r.CompanyID, &r.CompanyName, &r.Address, &r.ClosestHub, &r.DistanceKm); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan proximity result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list proximity results iterate")
}

func (s *SQLiteStore) GetCachedGeocode(ctx context.Context, key string) (*geocode.Result, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, display_name, matched, source FROM geocode_cache
		 WHERE address_hash = ? AND expires_at > datetime('now')`,
		key,
	)

	var r geocode.Result
	err := row.Scan(&r.Latitude, &r.Longitude, &r.DisplayName, &r.Matched, &r.Source)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: get cached geocode")
	}
	return &r, true, nil
}

func (s *SQLiteStore) SetCachedGeocode(ctx context.Context, key string, result *geocode.Result, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO geocode_cache (address_hash, latitude, longitude, display_name, matched, source, cached_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			display_name = excluded.display_name,
			matched = excluded.matched,
			source = excluded.source,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`,
		key, result.Latitude, result.Longitude, result.DisplayName, result.Matched, result.Source, now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached geocode")
}

func (s *SQLiteStore) DeleteExpiredGeocodes(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM geocode_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired geocodes")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var summaryJSON, runErr sql.NullString

	err := row.Scan(&r.ID, &r.Label, &r.Status, &summaryJSON, &runErr, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if summaryJSON.Valid {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), r.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
	}
	if runErr.Valid {
		r.Error = runErr.String
	}
	return &r, nil
}
