package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the manifest database inside the output directory.
const FileName = "manifest.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Run describes one build that wrote into the output directory.
type Run struct {
	ID              string
	CreatedAt       time.Time
	TrainingType    string
	Seed            uint64
	TrainSize       float64
	ValidationSize  float64
	TestSize        float64
	TrainCount      int
	ValidationCount int
	TestCount       int
	CopyStrategy    string
	BytesWritten    int64
	Duration        time.Duration
}

// Entry is one (record, class) pair a run wrote.
type Entry struct {
	Partition   string
	Row         int
	Dataset     string
	Class       string
	SourceFrame string
	OutputFrame string
	OutputMask  string
}

// Store is the SQLite manifest of an output directory.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens dir/manifest.db.
func Open(ctx context.Context, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	// The manifest ships with the dataset, so keep it a single file.
	pragmas := []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores run and its entries in one transaction.
func (s *Store) Record(ctx context.Context, run Run, entries []Entry) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	return retryOnBusy(ctx, func() error {
		return s.record(ctx, run, entries)
	})
}

func (s *Store) record(ctx context.Context, run Run, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin manifest tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		id, created_at, training_type, seed, train_size, validation_size, test_size,
		train_count, validation_count, test_count, copy_strategy, bytes_written, duration_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.TrainingType,
		strconv.FormatUint(run.Seed, 10),
		run.TrainSize,
		run.ValidationSize,
		run.TestSize,
		run.TrainCount,
		run.ValidationCount,
		run.TestCount,
		run.CopyStrategy,
		run.BytesWritten,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (
		run_id, partition_name, row_index, dataset, class, source_frame, output_frame, output_mask
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, run.ID, e.Partition, e.Row, e.Dataset, e.Class,
			e.SourceFrame, e.OutputFrame, e.OutputMask); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.SourceFrame, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit manifest: %w", err)
	}
	return nil
}

// Runs lists recorded runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, created_at, training_type, seed, train_size, validation_size, test_size,
		train_count, validation_count, test_count, copy_strategy, bytes_written, duration_ms
		FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			createdAt  string
			seed       string
			durationMs int64
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.TrainingType, &seed,
			&run.TrainSize, &run.ValidationSize, &run.TestSize,
			&run.TrainCount, &run.ValidationCount, &run.TestCount,
			&run.CopyStrategy, &run.BytesWritten, &durationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", run.ID, err)
		}
		if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("parse seed of run %s: %w", run.ID, err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries lists the entries of a run ordered by partition and row.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		partition_name, row_index, dataset, class, source_frame, output_frame, output_mask
		FROM entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Partition, &e.Row, &e.Dataset, &e.Class,
			&e.SourceFrame, &e.OutputFrame, &e.OutputMask); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
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
