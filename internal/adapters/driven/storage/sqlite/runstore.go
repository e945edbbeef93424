package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save persists a run summary, creating or updating it by ID. Runners
// save once when a run begins and once when it finishes.
func (r *runStore) Save(ctx context.Context, run domain.RunSummary) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, entity, phase, state, started_at, finished_at,
			queries, rows_read, records_written, keys_discovered, date_warnings, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entity = excluded.entity,
			phase = excluded.phase,
			state = excluded.state,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			queries = excluded.queries,
			rows_read = excluded.rows_read,
			records_written = excluded.records_written,
			keys_discovered = excluded.keys_discovered,
			date_warnings = excluded.date_warnings,
			error = excluded.error
	`, run.ID, run.Entity, run.Phase.String(), string(run.State),
		run.StartedAt.UTC().Format(time.RFC3339), formatNullableTime(run.FinishedAt),
		run.Stats.Queries, run.Stats.RowsRead, run.Stats.RecordsWritten,
		run.Stats.KeysDiscovered, run.Stats.DateWarnings, nullString(run.Error))
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// Get retrieves one run. A missing ID reports domain.ErrNotFound.
func (r *runStore) Get(ctx context.Context, id string) (domain.RunSummary, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, entity, phase, state, started_at, finished_at,
			queries, rows_read, records_written, keys_discovered, date_warnings, error
		FROM import_runs WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunSummary{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.RunSummary{}, err
	}
	return run, nil
}

// List returns runs ordered most recent first. An empty entity matches
// all entities; a non-positive limit means no limit.
func (r *runStore) List(ctx context.Context, entity string, limit int) ([]domain.RunSummary, error) {
	query := `
		SELECT id, entity, phase, state, started_at, finished_at,
			queries, rows_read, records_written, keys_discovered, date_warnings, error
		FROM import_runs
	`
	args := []any{}
	if entity != "" {
		query += " WHERE entity = ?"
		args = append(args, entity)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ==================== Helper Functions ====================

// scanRun scans one import_runs row through the given Scan function, so
// it serves both sql.Row and sql.Rows.
func scanRun(scan func(...any) error) (domain.RunSummary, error) {
	var run domain.RunSummary
	var phase, state, startedAt string
	var finishedAt, errMsg sql.NullString

	err := scan(&run.ID, &run.Entity, &phase, &state, &startedAt, &finishedAt,
		&run.Stats.Queries, &run.Stats.RowsRead, &run.Stats.RecordsWritten,
		&run.Stats.KeysDiscovered, &run.Stats.DateWarnings, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunSummary{}, err
	}
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("scanning run: %w", err)
	}

	run.Phase = domain.ParsePhase(phase)
	run.State = domain.RunState(state)
	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		run.StartedAt = t
	}
	run.FinishedAt = parseNullableTime(finishedAt)
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}

// formatNullableTime formats a time to RFC3339 string, or returns nil for zero time.
func formatNullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
