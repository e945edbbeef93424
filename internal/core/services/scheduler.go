package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
	"github.com/mongoflat/mongoflat/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const defaultSweepInterval = 10 * time.Minute

// Scheduler runs imports on an interval. Each sweep visits every
// configured entity: entities with a stored watermark get a delta import,
// entities without one get their first full import. Sweeps run on the
// Start goroutine; the runner's no-overlap guard makes a sweep that
// crosses a manual run skip rather than stack.
type Scheduler struct {
	cfg      domain.ScheduleConfig
	entities []string
	importer driving.Importer
	state    driven.StateStore

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler over the configured entities.
func NewScheduler(cfg domain.Config, importer driving.Importer, state driven.StateStore) *Scheduler {
	return &Scheduler{
		cfg:      cfg.Schedule,
		entities: cfg.EntityNames(),
		importer: importer,
		state:    state,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled. A disabled schedule returns
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	interval := s.cfg.Interval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	// Sweep immediately on startup, then on every tick.
	s.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop gracefully stops scheduling. The sweep in flight, if any, finishes
// on the Start goroutine before Start returns.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	return nil
}

// sweep imports every entity once.
func (s *Scheduler) sweep(ctx context.Context) {
	for _, entity := range s.entities {
		if ctx.Err() != nil {
			return
		}

		var err error
		if s.hasWatermark(ctx, entity) {
			_, err = s.importer.DeltaImport(ctx, entity)
		} else {
			_, err = s.importer.FullImport(ctx, entity)
		}

		switch {
		case err == nil:
		case errors.Is(err, domain.ErrRunInProgress):
			logger.Info("scheduler: skipping %s, another run is in progress", entity)
		default:
			logger.Warn("scheduler: import of %s failed: %v", entity, err)
		}
	}
}

func (s *Scheduler) hasWatermark(ctx context.Context, entity string) bool {
	_, err := s.state.Get(ctx, watermarkKey(entity))
	return err == nil
}
