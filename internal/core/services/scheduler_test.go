package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
)

type fakeImporter struct {
	mu     sync.Mutex
	full   []string
	delta  []string
	err    error
	runErr map[string]error
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{runErr: make(map[string]error)}
}

func (f *fakeImporter) FullImport(_ context.Context, entity string) (domain.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.full = append(f.full, entity)
	if err, ok := f.runErr[entity]; ok {
		return domain.RunSummary{}, err
	}
	return domain.RunSummary{Entity: entity, State: domain.RunSucceeded}, f.err
}

func (f *fakeImporter) DeltaImport(_ context.Context, entity string) (domain.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delta = append(f.delta, entity)
	return domain.RunSummary{Entity: entity, State: domain.RunSucceeded}, f.err
}

func (f *fakeImporter) Discover(context.Context, string) ([]domain.ChangeMarker, domain.RunSummary, error) {
	return nil, domain.RunSummary{}, nil
}

func (f *fakeImporter) ImportAll(context.Context) ([]domain.RunSummary, error) {
	return nil, nil
}

func (f *fakeImporter) Status(context.Context) (driving.ImportStatus, error) {
	return driving.ImportStatus{}, nil
}

func (f *fakeImporter) fullCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.full...)
}

func (f *fakeImporter) deltaCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delta...)
}

func schedulerConfig(interval time.Duration) domain.Config {
	return domain.Config{
		Entities: []domain.Entity{
			{Name: "orders", Collection: "orders", Query: `{}`},
			{Name: "users", Collection: "users", Query: `{}`},
		},
		Schedule: domain.ScheduleConfig{Enabled: true, Interval: interval},
	}
}

func startScheduler(t *testing.T, s *Scheduler) (stop func()) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	return func() {
		require.NoError(t, s.Stop())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop")
		}
	}
}

func TestSchedulerSweepsImmediately(t *testing.T) {
	importer := newFakeImporter()
	s := NewScheduler(schedulerConfig(time.Hour), importer, newFakeStateStore())

	stop := startScheduler(t, s)
	waitFor(t, func() bool { return len(importer.fullCalls()) == 2 })
	stop()

	assert.Equal(t, []string{"orders", "users"}, importer.fullCalls())
	assert.Empty(t, importer.deltaCalls())
}

func TestSchedulerPrefersDeltaWithWatermark(t *testing.T) {
	importer := newFakeImporter()
	state := newFakeStateStore()
	require.NoError(t, state.Set(context.Background(), watermarkKey("orders"), "2025-08-20T00:00:00Z"))

	s := NewScheduler(schedulerConfig(time.Hour), importer, state)

	stop := startScheduler(t, s)
	waitFor(t, func() bool {
		return len(importer.deltaCalls()) == 1 && len(importer.fullCalls()) == 1
	})
	stop()

	assert.Equal(t, []string{"orders"}, importer.deltaCalls())
	assert.Equal(t, []string{"users"}, importer.fullCalls())
}

func TestSchedulerTicksAgain(t *testing.T) {
	importer := newFakeImporter()
	s := NewScheduler(schedulerConfig(10*time.Millisecond), importer, newFakeStateStore())

	stop := startScheduler(t, s)
	waitFor(t, func() bool { return len(importer.fullCalls()) >= 4 })
	stop()
}

func TestSchedulerContinuesAfterEntityFailure(t *testing.T) {
	importer := newFakeImporter()
	importer.runErr["orders"] = &domain.QueryError{Query: `{`, Cause: context.DeadlineExceeded}

	s := NewScheduler(schedulerConfig(time.Hour), importer, newFakeStateStore())

	stop := startScheduler(t, s)
	waitFor(t, func() bool { return len(importer.fullCalls()) == 2 })
	stop()

	// The failing entity does not stop the sweep.
	assert.Equal(t, []string{"orders", "users"}, importer.fullCalls())
}

func TestSchedulerDisabled(t *testing.T) {
	cfg := schedulerConfig(time.Hour)
	cfg.Schedule.Enabled = false
	importer := newFakeImporter()
	s := NewScheduler(cfg, importer, newFakeStateStore())

	// Start returns immediately when disabled.
	assert.NoError(t, s.Start(context.Background()))
	assert.Empty(t, importer.fullCalls())
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(schedulerConfig(time.Hour), newFakeImporter(), newFakeStateStore())
	assert.NoError(t, s.Stop())
}

func TestSchedulerContextCancellation(t *testing.T) {
	importer := newFakeImporter()
	s := NewScheduler(schedulerConfig(time.Hour), importer, newFakeStateStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitFor(t, func() bool { return len(importer.fullCalls()) == 2 })
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe cancellation")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}
