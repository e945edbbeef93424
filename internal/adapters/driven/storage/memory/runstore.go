package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunSummary
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.RunSummary),
	}
}

// Save stores or updates a run summary, keyed by its ID.
func (s *RunStore) Save(_ context.Context, run domain.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// Get retrieves one run. A missing ID reports domain.ErrNotFound.
func (s *RunStore) Get(_ context.Context, id string) (domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return domain.RunSummary{}, domain.ErrNotFound
	}
	return run, nil
}

// List returns runs most recent first. An empty entity matches all
// entities; a non-positive limit means no limit.
func (s *RunStore) List(_ context.Context, entity string, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []domain.RunSummary //nolint:prealloc // filtered below
	for _, run := range s.runs {
		if entity != "" && run.Entity != entity {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
