package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"loudlimit/internal/config"
	"loudlimit/internal/normalize"
	"loudlimit/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded batch or single-file run.
type Run struct {
	ID         string
	Root       string
	TargetLKFS float64
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Normalized int
	Unchanged  int
	Failed     int
}

// Entry is one recorded asset outcome.
type Entry struct {
	RunID        string
	Path         string
	Status       normalize.Status
	InputI       *float64
	StagedPath   string
	ErrorKind    string
	ErrorMessage string
}

// Open initializes or connects to the history database under the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", dbPath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Record stores a run summary and every outcome in it.
func (s *Store) Record(ctx context.Context, summary normalize.Summary) error {
	if strings.TrimSpace(summary.RunID) == "" {
		return errors.New("run id required")
	}
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO runs (id, root, target_lkfs, started_at, finished_at, processed, normalized, unchanged, failed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID,
			summary.Root,
			summary.TargetLKFS,
			formatTime(summary.StartedAt),
			formatTime(finished),
			summary.Processed,
			summary.Count(normalize.StatusNormalized),
			summary.Count(normalize.StatusUnchanged),
			len(summary.Failures),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, outcome := range summary.Outcomes {
			var inputI sql.NullFloat64
			if outcome.Report != nil {
				inputI = sql.NullFloat64{Float64: outcome.Report.InputIntegrated, Valid: true}
			}
			var errMessage string
			if outcome.Err != nil {
				errMessage = outcome.Err.Error()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO outcomes (run_id, position, path, status, input_i, staged_path, error_kind, error_message)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				summary.RunID,
				i,
				outcome.Path,
				string(outcome.Status),
				inputI,
				outcome.StagedPath,
				string(normalize.KindOf(outcome.Err)),
				errMessage,
			)
			if err != nil {
				return fmt.Errorf("insert outcome: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit record: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, target_lkfs, started_at, finished_at, processed, normalized, unchanged, failed
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Root, &run.TargetLKFS, &started, &finished,
			&run.Processed, &run.Normalized, &run.Unchanged, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Entries returns the recorded outcomes of a run in enumeration order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, status, input_i, staged_path, error_kind, error_message
		 FROM outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry  Entry
			status string
			inputI sql.NullFloat64
		)
		if err := rows.Scan(&entry.RunID, &entry.Path, &status, &inputI,
			&entry.StagedPath, &entry.ErrorKind, &entry.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		entry.Status = normalize.Status(status)
		if inputI.Valid {
			value := inputI.Float64
			entry.InputI = &value
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return entries, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := range busyRetryAttempts {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}
