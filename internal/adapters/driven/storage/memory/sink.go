// Package memory provides in-memory implementations of the driven
// storage ports. They back tests and dry runs where nothing should touch
// disk; the SQLite adapter is the durable counterpart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// Ensure RecordSink implements the interface.
var _ driven.RecordSink = (*RecordSink)(nil)

// RecordSink is an in-memory implementation of driven.RecordSink.
type RecordSink struct {
	mu      sync.RWMutex
	records map[string]map[string]domain.FlatRecord
}

// NewRecordSink creates a new in-memory record sink.
func NewRecordSink() *RecordSink {
	return &RecordSink{
		records: make(map[string]map[string]domain.FlatRecord),
	}
}

// Write stores or replaces a record under its entity. Records without an
// identity get a generated one.
func (s *RecordSink) Write(_ context.Context, entity string, rec domain.FlatRecord) error {
	id, ok := rec.ID()
	if !ok {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.records[entity]
	if !ok {
		byID = make(map[string]domain.FlatRecord)
		s.records[entity] = byID
	}
	byID[id] = cloneRecord(rec)
	return nil
}

// Flush is a no-op; writes land immediately.
func (s *RecordSink) Flush(_ context.Context) error {
	return nil
}

// Record returns one stored record and whether it exists.
func (s *RecordSink) Record(entity, id string) (domain.FlatRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[entity][id]
	if !ok {
		return nil, false
	}
	return cloneRecord(rec), true
}

// Records returns the stored records of an entity ordered by record id.
func (s *RecordSink) Records(entity string) []domain.FlatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := s.records[entity]

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.FlatRecord, len(ids))
	for i, id := range ids {
		out[i] = cloneRecord(byID[id])
	}
	return out
}

// Count reports how many records an entity holds.
func (s *RecordSink) Count(entity string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[entity])
}

// cloneRecord copies a record so callers cannot mutate stored state.
func cloneRecord(rec domain.FlatRecord) domain.FlatRecord {
	out := make(domain.FlatRecord, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
