package driven

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// ConfigStore loads the application configuration.
type ConfigStore interface {
	// Load reads and validates the configuration.
	Load(ctx context.Context) (domain.Config, error)

	// Watch invokes onChange with the freshly loaded configuration each
	// time the backing source changes, until ctx is cancelled. Loads
	// that fail validation are reported through onError and do not
	// replace the running configuration.
	Watch(ctx context.Context, onChange func(domain.Config), onError func(error)) error
}
