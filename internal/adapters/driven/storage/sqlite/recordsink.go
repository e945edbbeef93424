package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// recordSink implements driven.RecordSink.
type recordSink struct {
	store *Store
}

var _ driven.RecordSink = (*recordSink)(nil)

// Write replaces the stored record with the given one, one row per field.
// Records without an identity get a generated one so the write still
// lands somewhere retrievable.
func (s *recordSink) Write(ctx context.Context, entity string, rec domain.FlatRecord) error {
	id, ok := rec.ID()
	if !ok {
		id = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning record write: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// Delete first so fields dropped since the last import do not linger.
	_, err = tx.ExecContext(ctx, "DELETE FROM records WHERE entity = ? AND record_id = ?", entity, id)
	if err != nil {
		return fmt.Errorf("clearing record %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (entity, record_id, field, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing record write: %w", err)
	}
	defer stmt.Close()

	for field, value := range rec {
		encoded, err := encodeValue(value)
		if err != nil {
			return fmt.Errorf("encoding field %s of record %s: %w", field, id, err)
		}
		if _, err := stmt.ExecContext(ctx, entity, id, field, encoded, now); err != nil {
			return fmt.Errorf("writing field %s of record %s: %w", field, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record %s: %w", id, err)
	}
	return nil
}

// Flush is a no-op; every Write commits its own transaction.
func (s *recordSink) Flush(ctx context.Context) error {
	return nil
}

// Entities lists the entities present in the store with their record
// counts, sorted by name.
func (s *Store) Entities(ctx context.Context) ([]domain.EntityCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity, COUNT(DISTINCT record_id)
		FROM records
		GROUP BY entity
		ORDER BY entity
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var counts []domain.EntityCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ec domain.EntityCount
		if err := rows.Scan(&ec.Entity, &ec.Records); err != nil {
			return nil, fmt.Errorf("scanning entity count: %w", err)
		}
		counts = append(counts, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return counts, nil
}

// Record reassembles one stored record. A missing id reports
// domain.ErrNotFound.
func (s *Store) Record(ctx context.Context, entity, id string) (domain.FlatRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field, value FROM records
		WHERE entity = ? AND record_id = ?
	`, entity, id)
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", id, err)
	}
	defer rows.Close()

	rec := make(domain.FlatRecord)
	for rows.Next() {
		var field string
		var value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scanning record %s: %w", id, err)
		}
		decoded, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("decoding field %s of record %s: %w", field, id, err)
		}
		rec[field] = decoded
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record %s: %w", id, err)
	}
	if len(rec) == 0 {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// Records reassembles the stored records of an entity, ordered by record
// id. A non-positive limit means no limit.
func (s *Store) Records(ctx context.Context, entity string, limit int) ([]domain.FlatRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, field, value FROM records
		WHERE entity = ?
		ORDER BY record_id
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("querying records of %s: %w", entity, err)
	}
	defer rows.Close()

	byID := make(map[string]domain.FlatRecord)
	for rows.Next() {
		var id, field, value string
		if err := rows.Scan(&id, &field, &value); err != nil {
			return nil, fmt.Errorf("scanning records of %s: %w", entity, err)
		}
		decoded, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("decoding field %s of record %s: %w", field, id, err)
		}
		rec, ok := byID[id]
		if !ok {
			rec = make(domain.FlatRecord)
			byID[id] = rec
		}
		rec[field] = decoded
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records of %s: %w", entity, err)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	records := make([]domain.FlatRecord, len(ids))
	for i, id := range ids {
		records[i] = byID[id]
	}
	return records, nil
}

// ==================== Value Codec ====================

// encodeValue renders a flat record value as JSON text for storage.
func encodeValue(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeValue restores a stored value. Numbers decode as int64 when they
// are whole, matching the shapes the flattener produces.
func decodeValue(encoded string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(encoded))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("unmarshaling value: %w", err)
	}
	return restoreNumbers(value), nil
}

func restoreNumbers(value any) any {
	switch t := value.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && !strings.ContainsAny(t.String(), ".eE") {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case []any:
		for i, elem := range t {
			t[i] = restoreNumbers(elem)
		}
		return t
	default:
		return value
	}
}
