package driving

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// BrowseService exposes what previous imports have stored, for the
// inspection commands and the TUI.
type BrowseService interface {
	// Entities lists the entities holding records, with counts.
	Entities(ctx context.Context) ([]domain.EntityCount, error)

	// Records returns an entity's stored records ordered by record id.
	// A non-positive limit means no limit.
	Records(ctx context.Context, entity string, limit int) ([]domain.FlatRecord, error)

	// Record returns one stored record. A missing id reports
	// domain.ErrNotFound.
	Record(ctx context.Context, entity, id string) (domain.FlatRecord, error)

	// Runs returns import run history, most recent first. An empty
	// entity matches all entities; a non-positive limit means no limit.
	Runs(ctx context.Context, entity string, limit int) ([]domain.RunSummary, error)
}
