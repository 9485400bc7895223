package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/epifield/regionpatch/internal/model"
)

// RunDB provides SQLite-based storage for patch-run history.
// It manages connection pooling and provides methods for saving and
// querying runs.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned; the history command uses this to report "no runs yet"
// without creating an empty database.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "regionpatch.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw prevents creating new files,
	// mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // Best effort cleanup
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one row per patch invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		vintages TEXT NOT NULL,
		max_distance_m REAL NOT NULL,
		files INTEGER NOT NULL,
		failed_files INTEGER NOT NULL,
		total_rows INTEGER NOT NULL,
		coord_rows INTEGER NOT NULL,
		matched_rows INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Run files store per-file statistics for each run
	CREATE TABLE IF NOT EXISTS run_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		rows INTEGER NOT NULL,
		coord_rows INTEGER NOT NULL,
		matched_rows INTEGER NOT NULL,
		match_rate REAL NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_files_path ON run_files(path);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored patch run.
type RunRecord struct {
	ID          int64
	StartedAt   time.Time
	Duration    time.Duration
	Vintages    string
	MaxDistance float64
	Files       int
	FailedFiles int
	TotalRows   int
	CoordRows   int
	MatchedRows int
}

// MatchRate returns the run's finest-level match fraction in [0, 1].
func (r *RunRecord) MatchRate() float64 {
	if r.CoordRows == 0 {
		return 0
	}
	return float64(r.MatchedRows) / float64(r.CoordRows)
}

// FileRecord is a stored per-file statistic.
type FileRecord struct {
	ID          int64
	RunID       int64
	Path        string
	Rows        int
	CoordRows   int
	MatchedRows int
	MatchRate   float64
	Error       string
}

// SaveRunReport persists a run and its per-file statistics.
func (rdb *RunDB) SaveRunReport(ctx context.Context, run *model.RunReport) (int64, error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	vintages := make([]string, len(run.Vintages))
	for i, v := range run.Vintages {
		vintages[i] = fmt.Sprintf("%d", v)
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, duration_ms, vintages, max_distance_m,
		files, failed_files, total_rows, coord_rows, matched_rows)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		strings.Join(vintages, ","),
		run.MaxDistance,
		len(run.Files),
		run.FailedFiles(),
		run.TotalRows(),
		run.TotalCoordRows(),
		run.TotalMatched(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, f := range run.Files {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_files (run_id, path, rows, coord_rows, matched_rows, match_rate, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, f.Path, f.Rows, f.CoordRows, f.Matched(), f.MatchRate(), f.Error,
		); err != nil {
			return 0, fmt.Errorf("failed to insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT id, started_at, duration_ms, vintages, max_distance_m,
		files, failed_files, total_rows, coord_rows, matched_rows
	FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var records []*RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt string
		var durationMS int64
		if err := rows.Scan(&r.ID, &startedAt, &durationMS, &r.Vintages, &r.MaxDistance,
			&r.Files, &r.FailedFiles, &r.TotalRows, &r.CoordRows, &r.MatchedRows); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(startedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, &r)
	}
	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// how the value was written. Returns zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ListRunFiles returns the per-file statistics for one run, in insert order.
func (rdb *RunDB) ListRunFiles(ctx context.Context, runID int64) ([]*FileRecord, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT id, run_id, path, rows, coord_rows, matched_rows, match_rate, error
	FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var records []*FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &f.Rows, &f.CoordRows,
			&f.MatchedRows, &f.MatchRate, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		records = append(records, &f)
	}
	return records, rows.Err()
}

// FileHistory returns all stored statistics for one input path, newest
// run first, up to limit.
func (rdb *RunDB) FileHistory(ctx context.Context, path string, limit int) ([]*FileRecord, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT id, run_id, path, rows, coord_rows, matched_rows, match_rate, error
	FROM run_files WHERE path = ? ORDER BY run_id DESC LIMIT ?`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query file history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var records []*FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &f.Rows, &f.CoordRows,
			&f.MatchedRows, &f.MatchRate, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		records = append(records, &f)
	}
	return records, rows.Err()
}
