package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordRun stores run and its tables. An empty ID is filled with a new
// UUID and a zero StartedAt with the current time.
func (s *SQLiteStore) RecordRun(run *Run) (err error) {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = generateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	s.logger.Debug("recording run", slog.String("id", run.ID), slog.Int64("seed", run.Seed))

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.Exec(
		`INSERT INTO runs (id, seed, output, vocabulary, started_at, duration_ms, short) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.Output, run.Vocabulary,
		run.StartedAt.UTC().Format(timeLayout), run.Duration.Milliseconds(), run.Short(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	for i, t := range run.Tables {
		_, err = tx.Exec(
			`INSERT INTO run_tables (run_id, position, name, target, rows, attempts, exhausted, reason) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, t.Name, t.Target, t.Rows, t.Attempts, t.Exhausted, t.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to record table %s: %w", t.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRow(
		`SELECT id, seed, output, vocabulary, started_at, duration_ms FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.Tables, err = s.runTables(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first, up to limit.
// A non-positive limit lists every run.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT id, seed, output, vocabulary, started_at, duration_ms FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	// release the single connection before the per-run queries
	_ = rows.Close()

	for _, run := range runs {
		if run.Tables, err = s.runTables(run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *SQLiteStore) runTables(runID string) ([]TableRun, error) {
	rows, err := s.db.Query(
		`SELECT name, target, rows, attempts, exhausted, reason FROM run_tables WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables of run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	tables := []TableRun{}
	for rows.Next() {
		var t TableRun
		if err := rows.Scan(&t.Name, &t.Target, &t.Rows, &t.Attempts, &t.Exhausted, &t.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan table of run %s: %w", runID, err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables of run %s: %w", runID, err)
	}
	return tables, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		durationMs int64
	)
	if err := row.Scan(&run.ID, &run.Seed, &run.Output, &run.Vocabulary, &startedAt, &durationMs); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}
