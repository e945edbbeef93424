package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
	"github.com/mongoflat/mongoflat/internal/datetime"
	"github.com/mongoflat/mongoflat/internal/logger"
)

// Ensure Runner implements the interface.
var _ driving.Importer = (*Runner)(nil)

const watermarkLayout = "2006-01-02T15:04:05Z"

// watermarkKey is where an entity's last import watermark lives in the
// state store.
func watermarkKey(entity string) string {
	return entity + ".last_index_time"
}

// Runner coordinates import runs: it builds a session and processor per
// run, pulls records through the sync phases, feeds the sink, persists
// run summaries and maintains the per-entity watermark. Runs never
// overlap; a second run started while one is going reports
// ErrRunInProgress.
type Runner struct {
	cfg      domain.Config
	store    driven.Datastore
	sink     driven.RecordSink
	state    driven.StateStore
	runs     driven.RunStore
	rewriter *datetime.Rewriter
	limiter  *rate.Limiter

	// Status tracking
	mu     sync.RWMutex
	active bool
	status driving.ImportStatus
}

// NewRunner creates a runner over a connected datastore. The rate limit
// in cfg, when enabled, throttles every query the runner's processors
// issue.
func NewRunner(
	cfg domain.Config,
	store driven.Datastore,
	sink driven.RecordSink,
	state driven.StateStore,
	runs driven.RunStore,
) *Runner {
	var limiter *rate.Limiter
	if cfg.Limit.Enabled() {
		burst := cfg.Limit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Limit.PerSecond), burst)
	}
	return &Runner{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		state:    state,
		runs:     runs,
		rewriter: datetime.NewRewriter(),
		limiter:  limiter,
	}
}

// FullImport re-imports every document the entity's import query selects.
func (r *Runner) FullImport(ctx context.Context, entity string) (domain.RunSummary, error) {
	// 1. Resolve the entity
	e, err := r.cfg.FindEntity(entity)
	if err != nil {
		return domain.RunSummary{}, err
	}

	// 2. Claim the runner
	if err := r.begin(e.Name, domain.PhaseFullImport); err != nil {
		return domain.RunSummary{}, err
	}

	run := r.newRun(e.Name, domain.PhaseFullImport)
	r.saveRun(ctx, run)
	logger.Info("Starting full import for entity %s", e.Name)

	// 3. Build session and processor
	session := r.newSession(ctx, e)
	session.SetPhase(domain.PhaseFullImport)
	proc := NewProcessor(r.store, r.rewriter, r.limiter)
	proc.Prepare(ctx, session)

	// 4. Pull every row into the sink
	written, err := r.importRows(ctx, proc, e.Name)
	if err != nil {
		return r.fail(ctx, run, proc.Stats(), written, err)
	}

	// 5. Make the import durable, then advance the watermark
	if err := r.sink.Flush(ctx); err != nil {
		return r.fail(ctx, run, proc.Stats(), written, fmt.Errorf("flush sink: %w", err))
	}
	if err := r.setWatermark(ctx, e.Name, run.StartedAt); err != nil {
		return r.fail(ctx, run, proc.Stats(), written, err)
	}

	return r.succeed(ctx, run, proc.Stats(), written)
}

// DeltaImport discovers documents changed since the stored watermark and
// re-imports each one by id.
func (r *Runner) DeltaImport(ctx context.Context, entity string) (domain.RunSummary, error) {
	e, err := r.cfg.FindEntity(entity)
	if err != nil {
		return domain.RunSummary{}, err
	}
	if err := r.begin(e.Name, domain.PhaseDeltaImport); err != nil {
		return domain.RunSummary{}, err
	}

	run := r.newRun(e.Name, domain.PhaseDeltaImport)
	r.saveRun(ctx, run)
	logger.Info("Starting delta import for entity %s", e.Name)

	session := r.newSession(ctx, e)
	if err := r.requireWatermark(session, e); err != nil {
		return r.fail(ctx, run, domain.ImportStats{}, 0, err)
	}
	proc := NewProcessor(r.store, r.rewriter, r.limiter)

	// 1. Discovery: collect the changed ids
	session.SetPhase(domain.PhaseDeltaDiscovery)
	proc.Prepare(ctx, session)
	markers, err := r.drainMarkers(ctx, proc)
	if err != nil {
		return r.fail(ctx, run, proc.Stats(), 0, err)
	}
	logger.Info("Delta discovery for %s found %d changed documents", e.Name, len(markers))

	// 2. Import: re-fetch one document per marker
	session.SetPhase(domain.PhaseDeltaImport)
	var written int64
	for _, m := range markers {
		session.SetToken(TokenDeltaID, m.ID)
		proc.Prepare(ctx, session)
		n, err := r.importRows(ctx, proc, e.Name)
		written += n
		if err != nil {
			return r.fail(ctx, run, proc.Stats(), written, err)
		}
	}

	// 3. Make the import durable, then advance the watermark
	if err := r.sink.Flush(ctx); err != nil {
		return r.fail(ctx, run, proc.Stats(), written, fmt.Errorf("flush sink: %w", err))
	}
	if err := r.setWatermark(ctx, e.Name, run.StartedAt); err != nil {
		return r.fail(ctx, run, proc.Stats(), written, err)
	}

	return r.succeed(ctx, run, proc.Stats(), written)
}

// Discover runs delta discovery alone and returns the change markers. It
// imports nothing and leaves the watermark untouched.
func (r *Runner) Discover(ctx context.Context, entity string) ([]domain.ChangeMarker, domain.RunSummary, error) {
	e, err := r.cfg.FindEntity(entity)
	if err != nil {
		return nil, domain.RunSummary{}, err
	}
	if err := r.begin(e.Name, domain.PhaseDeltaDiscovery); err != nil {
		return nil, domain.RunSummary{}, err
	}

	run := r.newRun(e.Name, domain.PhaseDeltaDiscovery)
	r.saveRun(ctx, run)

	session := r.newSession(ctx, e)
	if err := r.requireWatermark(session, e); err != nil {
		summary, ferr := r.fail(ctx, run, domain.ImportStats{}, 0, err)
		return nil, summary, ferr
	}

	session.SetPhase(domain.PhaseDeltaDiscovery)
	proc := NewProcessor(r.store, r.rewriter, r.limiter)
	proc.Prepare(ctx, session)

	markers, err := r.drainMarkers(ctx, proc)
	if err != nil {
		summary, ferr := r.fail(ctx, run, proc.Stats(), 0, err)
		return nil, summary, ferr
	}

	summary, _ := r.succeed(ctx, run, proc.Stats(), 0)
	return markers, summary, nil
}

// ImportAll runs a full import for every configured entity in order.
func (r *Runner) ImportAll(ctx context.Context) ([]domain.RunSummary, error) {
	summaries := make([]domain.RunSummary, 0, len(r.cfg.Entities))
	for _, e := range r.cfg.Entities {
		summary, err := r.FullImport(ctx, e.Name)
		summaries = append(summaries, summary)
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

// Status reports the runner's current activity.
func (r *Runner) Status(context.Context) (driving.ImportStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status, nil
}

// importRows pulls rows until the stream drains, writing each into the
// sink. It returns how many records were written.
func (r *Runner) importRows(ctx context.Context, proc *Processor, entity string) (int64, error) {
	var written int64
	for {
		rec, err := proc.NextRow(ctx)
		if errors.Is(err, domain.ErrStreamDrained) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		if err := r.sink.Write(ctx, entity, rec); err != nil {
			return written, fmt.Errorf("write record: %w", err)
		}
		written++
		r.progress(proc.Stats(), written)
	}
}

// drainMarkers pulls change markers until discovery drains.
func (r *Runner) drainMarkers(ctx context.Context, proc *Processor) ([]domain.ChangeMarker, error) {
	var markers []domain.ChangeMarker
	for {
		m, err := proc.NextModifiedKey(ctx)
		if errors.Is(err, domain.ErrStreamDrained) {
			return markers, nil
		}
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
		r.progress(proc.Stats(), 0)
	}
}

// requireWatermark fails fast when the delta query needs a watermark no
// previous run has stored.
func (r *Runner) requireWatermark(session *Session, e domain.Entity) error {
	needle := "${" + TokenLastIndexTime + "}"
	if !strings.Contains(e.DeltaQuery, needle) {
		return nil
	}
	if session.ReplaceTokens(needle) != needle {
		return nil
	}
	return &domain.ConfigError{
		Key:    TokenLastIndexTime,
		Reason: fmt.Sprintf("no stored watermark for entity %q; run a full import first", e.Name),
	}
}

// newSession builds the run session: store properties plus the entity's
// stored watermark, when one exists.
func (r *Runner) newSession(ctx context.Context, e domain.Entity) *Session {
	session := NewSession(e, r.cfg.Settings.Properties())
	wm, err := r.state.Get(ctx, watermarkKey(e.Name))
	switch {
	case err == nil:
		session.SetToken(TokenLastIndexTime, wm)
	case !errors.Is(err, domain.ErrNotFound):
		logger.Warn("reading watermark for %s: %v", e.Name, err)
	}
	return session
}

func (r *Runner) newRun(entity string, phase domain.SyncPhase) domain.RunSummary {
	return domain.RunSummary{
		ID:        uuid.NewString(),
		Entity:    entity,
		Phase:     phase,
		State:     domain.RunRunning,
		StartedAt: time.Now().UTC(),
	}
}

// setWatermark records the run's start instant, not its end: documents
// modified while the run was going must be picked up by the next delta.
func (r *Runner) setWatermark(ctx context.Context, entity string, start time.Time) error {
	if err := r.state.Set(ctx, watermarkKey(entity), start.UTC().Format(watermarkLayout)); err != nil {
		return fmt.Errorf("store watermark: %w", err)
	}
	return nil
}

func (r *Runner) succeed(ctx context.Context, run domain.RunSummary, stats domain.ImportStats, written int64) (domain.RunSummary, error) {
	stats.RecordsWritten = written
	run.Stats = stats
	run.State = domain.RunSucceeded
	run.FinishedAt = time.Now().UTC()
	r.saveRun(ctx, run)
	r.end(run)
	logger.Info("Finished %s", run)
	return run, nil
}

func (r *Runner) fail(ctx context.Context, run domain.RunSummary, stats domain.ImportStats, written int64, cause error) (domain.RunSummary, error) {
	stats.RecordsWritten = written
	run.Stats = stats
	run.State = domain.RunFailed
	run.Error = cause.Error()
	run.FinishedAt = time.Now().UTC()
	r.saveRun(ctx, run)
	r.end(run)
	return run, fmt.Errorf("entity %s %s: %w", run.Entity, run.Phase, cause)
}

func (r *Runner) saveRun(ctx context.Context, run domain.RunSummary) {
	if err := r.runs.Save(ctx, run); err != nil {
		logger.Warn("saving run %s: %v", run.ID, err)
	}
}

func (r *Runner) begin(entity string, phase domain.SyncPhase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active {
		return domain.ErrRunInProgress
	}
	r.active = true
	r.status = driving.ImportStatus{Running: true, Entity: entity, Phase: phase}
	return nil
}

func (r *Runner) progress(stats domain.ImportStats, written int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats.RecordsWritten = written
	r.status.Stats = stats
}

func (r *Runner) end(run domain.RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	r.status = driving.ImportStatus{
		Running: false,
		Entity:  run.Entity,
		Phase:   run.Phase,
		Stats:   run.Stats,
	}
}
