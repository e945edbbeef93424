package driven

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// RecordSink receives the flat records an import produces. Writes for the
// same entity and record id upsert; re-importing a document replaces its
// previous record.
type RecordSink interface {
	// Write stores one flat record under the entity it was imported for.
	Write(ctx context.Context, entity string, rec domain.FlatRecord) error

	// Flush makes all previous writes durable. Runners flush once per
	// completed phase.
	Flush(ctx context.Context) error
}
