package driven

import "context"

// StateStore persists the small key/value state that survives between
// runs, most importantly the per-entity last-import watermark that delta
// discovery substitutes into its query.
type StateStore interface {
	// Get retrieves a value. A missing key reports domain.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces a value.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
