package driven

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// RunStore persists import run summaries.
type RunStore interface {
	// Save stores or updates a run summary, keyed by its ID.
	Save(ctx context.Context, run domain.RunSummary) error

	// Get retrieves one run. A missing ID reports domain.ErrNotFound.
	Get(ctx context.Context, id string) (domain.RunSummary, error)

	// List returns runs for an entity, most recent first. An empty
	// entity matches all entities. A non-positive limit means no limit.
	List(ctx context.Context, entity string, limit int) ([]domain.RunSummary, error)
}
