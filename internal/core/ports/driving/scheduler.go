package driving

import "context"

// Scheduler runs imports on an interval in the background.
type Scheduler interface {
	// Start begins running scheduled imports.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops scheduling.
	Stop() error
}
