package driven

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// RecordBrowser reads back what a RecordSink has stored. The durable
// storage adapter implements both sides over the same tables.
type RecordBrowser interface {
	// Entities lists the entities holding records, with counts.
	Entities(ctx context.Context) ([]domain.EntityCount, error)

	// Records reassembles an entity's records ordered by record id. A
	// non-positive limit means no limit.
	Records(ctx context.Context, entity string, limit int) ([]domain.FlatRecord, error)

	// Record reassembles one record. A missing id reports
	// domain.ErrNotFound.
	Record(ctx context.Context, entity, id string) (domain.FlatRecord, error)
}
