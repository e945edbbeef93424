package driving

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// Importer coordinates import runs over configured entities.
type Importer interface {
	// FullImport re-imports every document the entity's import query
	// selects.
	FullImport(ctx context.Context, entity string) (domain.RunSummary, error)

	// DeltaImport discovers documents changed since the entity's last
	// run and re-imports each one. Without a stored watermark it reports
	// a ConfigError unless the entity's delta query needs none.
	DeltaImport(ctx context.Context, entity string) (domain.RunSummary, error)

	// Discover runs delta discovery only and returns the change markers
	// without importing them.
	Discover(ctx context.Context, entity string) ([]domain.ChangeMarker, domain.RunSummary, error)

	// ImportAll runs a full import for every configured entity, in
	// configuration order, and returns one summary per entity. The first
	// failing entity stops the sweep.
	ImportAll(ctx context.Context) ([]domain.RunSummary, error)

	// Status reports the importer's current activity.
	Status(ctx context.Context) (ImportStatus, error)
}

// ImportStatus represents the importer's current state.
type ImportStatus struct {
	// Running indicates whether a run is in progress.
	Running bool

	// Entity is the entity being imported while running.
	Entity string

	// Phase is the phase in progress while running.
	Phase domain.SyncPhase

	// Stats counts the in-progress run's work so far, or the last
	// finished run's totals when idle.
	Stats domain.ImportStats
}
