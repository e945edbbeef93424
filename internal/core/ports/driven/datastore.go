package driven

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// Datastore runs filter queries against one schema-less document store.
type Datastore interface {
	// Query submits a filter against a collection and returns a cursor
	// over the matching documents. The filter is the final query text,
	// tokens substituted and datetimes rewritten. A filter the store
	// cannot parse or execute returns a QueryError and no cursor.
	Query(ctx context.Context, collection, filter string) (Cursor, error)

	// Ping verifies the store is reachable with the configured
	// credentials.
	Ping(ctx context.Context) error

	// Close releases the connection. The datastore is unusable
	// afterwards.
	Close(ctx context.Context) error
}

// Cursor streams one query's result documents. Cursors are single-pass
// and not safe for concurrent use. The caller owns the cursor and must
// Close it; closing twice is harmless.
type Cursor interface {
	// Next advances to the following document. It returns false when the
	// results are exhausted or the stream broke; Err tells the two apart.
	Next(ctx context.Context) bool

	// Document returns the current document. Only valid after a true
	// Next.
	Document() domain.Document

	// Err returns the error that stopped iteration, or nil after a clean
	// exhaustion.
	Err() error

	// Close releases the cursor's server-side resources.
	Close(ctx context.Context) error
}

// OpenDatastore connects a datastore implementation from parsed settings.
// Adapters register themselves with the composition root through this
// signature.
type OpenDatastore func(ctx context.Context, settings domain.StoreSettings) (Datastore, error)
