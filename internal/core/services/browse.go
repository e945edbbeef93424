package services

import (
	"context"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
)

// Ensure BrowseService implements the interface.
var _ driving.BrowseService = (*BrowseService)(nil)

// BrowseService answers inspection queries over stored records and run
// history. It is read-only; imports never go through it.
type BrowseService struct {
	browser driven.RecordBrowser
	runs    driven.RunStore
}

// NewBrowseService creates a browse service over the given stores.
func NewBrowseService(browser driven.RecordBrowser, runs driven.RunStore) *BrowseService {
	return &BrowseService{
		browser: browser,
		runs:    runs,
	}
}

// Entities lists the entities holding records, with counts.
func (s *BrowseService) Entities(ctx context.Context) ([]domain.EntityCount, error) {
	return s.browser.Entities(ctx)
}

// Records returns an entity's stored records ordered by record id.
func (s *BrowseService) Records(ctx context.Context, entity string, limit int) ([]domain.FlatRecord, error) {
	return s.browser.Records(ctx, entity, limit)
}

// Record returns one stored record.
func (s *BrowseService) Record(ctx context.Context, entity, id string) (domain.FlatRecord, error) {
	return s.browser.Record(ctx, entity, id)
}

// Runs returns import run history, most recent first.
func (s *BrowseService) Runs(ctx context.Context, entity string, limit int) ([]domain.RunSummary, error) {
	return s.runs.List(ctx, entity, limit)
}
