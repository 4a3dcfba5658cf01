// Package buildlog persists build runs in a local SQLite database: one row
// per build, one per adapter run, and the final per-table row counts.
package buildlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite build log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the build log at the given path and configures
// WAL mode.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "buildlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "buildlog: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS builds (
	id              TEXT PRIMARY KEY,
	distance_cut_pc REAL NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	error           TEXT,
	started_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at    DATETIME
);

CREATE TABLE IF NOT EXISTS provider_runs (
	id         TEXT PRIMARY KEY,
	build_id   TEXT NOT NULL REFERENCES builds(id),
	provider   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	error      TEXT,
	staged     INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL DEFAULT (datetime('now')),
	ended_at   DATETIME
);

CREATE TABLE IF NOT EXISTS table_counts (
	build_id   TEXT NOT NULL REFERENCES builds(id),
	table_name TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	PRIMARY KEY (build_id, table_name)
);

CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
CREATE INDEX IF NOT EXISTS idx_provider_runs_build_id ON provider_runs(build_id);
`

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "buildlog: migrate")
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// StartBuild records the beginning of a build and returns its id.
func (s *Store) StartBuild(ctx context.Context, distanceCutPc float64) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, distance_cut_pc) VALUES (?, ?)`,
		id, distanceCutPc,
	)
	if err != nil {
		return "", eris.Wrap(err, "buildlog: start build")
	}
	return id, nil
}

// CompleteBuild marks a build as complete.
func (s *Store) CompleteBuild(ctx context.Context, buildID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE builds SET status = 'complete', completed_at = datetime('now') WHERE id = ?`,
		buildID,
	)
	return eris.Wrapf(err, "buildlog: complete build %s", buildID)
}

// FailBuild marks a build as failed.
func (s *Store) FailBuild(ctx context.Context, buildID, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE builds SET status = 'failed', error = ?, completed_at = datetime('now') WHERE id = ?`,
		errMsg, buildID,
	)
	return eris.Wrapf(err, "buildlog: fail build %s", buildID)
}

// StartProvider records the beginning of one adapter run.
func (s *Store) StartProvider(ctx context.Context, buildID, provider string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO provider_runs (id, build_id, provider) VALUES (?, ?, ?)`,
		id, buildID, provider,
	)
	if err != nil {
		return "", eris.Wrapf(err, "buildlog: start provider %s", provider)
	}
	return id, nil
}

// CompleteProvider marks an adapter run as complete. staged reports
// whether the run fell back to previously staged outputs.
func (s *Store) CompleteProvider(ctx context.Context, runID string, staged bool) error {
	st := 0
	if staged {
		st = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE provider_runs SET status = 'complete', staged = ?, ended_at = datetime('now') WHERE id = ?`,
		st, runID,
	)
	return eris.Wrapf(err, "buildlog: complete provider run %s", runID)
}

// FailProvider marks an adapter run as failed.
func (s *Store) FailProvider(ctx context.Context, runID, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE provider_runs SET status = 'failed', error = ?, ended_at = datetime('now') WHERE id = ?`,
		errMsg, runID,
	)
	return eris.Wrapf(err, "buildlog: fail provider run %s", runID)
}

// RecordCounts stores the final per-table row counts of a build.
func (s *Store) RecordCounts(ctx context.Context, buildID string, counts map[string]int) error {
	for table, n := range counts {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO table_counts (build_id, table_name, row_count) VALUES (?, ?, ?)
			 ON CONFLICT (build_id, table_name) DO UPDATE SET row_count = excluded.row_count`,
			buildID, table, n,
		)
		if err != nil {
			return eris.Wrapf(err, "buildlog: record count for %s", table)
		}
	}
	return nil
}

// Build is one row of the builds table.
type Build struct {
	ID            string
	DistanceCutPc float64
	Status        string
	Error         string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// ListBuilds returns builds ordered most recent first.
func (s *Store) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, distance_cut_pc, status, COALESCE(error, ''), started_at, completed_at
		 FROM builds ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "buildlog: list builds")
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		var b Build
		if err := rows.Scan(&b.ID, &b.DistanceCutPc, &b.Status, &b.Error, &b.StartedAt, &b.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "buildlog: scan build")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "buildlog: iterate builds")
}

// Counts returns the recorded per-table counts of a build.
func (s *Store) Counts(ctx context.Context, buildID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, row_count FROM table_counts WHERE build_id = ?`,
		buildID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "buildlog: counts for %s", buildID)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var table string
		var n int
		if err := rows.Scan(&table, &n); err != nil {
			return nil, eris.Wrap(err, "buildlog: scan count")
		}
		out[table] = n
	}
	return out, eris.Wrap(rows.Err(), "buildlog: iterate counts")
}
