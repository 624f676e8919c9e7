package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kbpkit/internal/config"
)

// ErrDisabled is returned by Open when history recording is turned off.
var ErrDisabled = errors.New("history disabled")

// Store manages check-run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// timestampLayout keeps fractional seconds fixed-width so stored values sort.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, file, checked_at, status, synced, pages, styles, diagnostics, modifications, error_message"

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
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
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
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
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || !cfg.History.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
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

// Record inserts a run. A missing ID or timestamp is filled in and written
// back to run.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("record run: nil run")
	}
	if strings.TrimSpace(run.File) == "" {
		return errors.New("record run: file is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CheckedAt.IsZero() {
		run.CheckedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusClean
	}

	_, err := s.execWithRetry(ctx,
		"INSERT INTO runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID,
		run.File,
		run.CheckedAt.UTC().Format(timestampLayout),
		string(run.Status),
		boolToInt(run.Synced),
		run.Pages,
		run.Styles,
		run.Diagnostics,
		run.Modifications,
		nullableString(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY checked_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// ForFile returns every run recorded for file, newest first.
func (s *Store) ForFile(ctx context.Context, file string) ([]Run, error) {
	ctx = ensureContext(ctx)
	return s.queryRuns(ctx,
		"SELECT "+runColumns+" FROM runs WHERE file = ? ORDER BY checked_at DESC, rowid DESC", file)
}

// Stats counts runs per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

// Prune keeps the newest keep runs and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.execWithRetry(ctx,
		"DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY checked_at DESC, rowid DESC LIMIT ?)", keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every recorded run.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run          Run
		checkedRaw   string
		status       string
		synced       int
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.File,
		&checkedRaw,
		&status,
		&synced,
		&run.Pages,
		&run.Styles,
		&run.Diagnostics,
		&run.Modifications,
		&errorMessage,
	); err != nil {
		return Run{}, err
	}
	checkedAt, err := time.Parse(timestampLayout, checkedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse checked_at %q: %w", checkedRaw, err)
	}
	run.CheckedAt = checkedAt
	run.Status = Status(status)
	run.Synced = synced != 0
	run.ErrorMessage = errorMessage.String
	return run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
