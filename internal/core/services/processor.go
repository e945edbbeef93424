package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/datetime"
	"github.com/mongoflat/mongoflat/internal/logger"
)

// ImportContext supplies the processor with per-run state: which phase is
// active, the entity's configured attributes, the store properties and
// token substitution. *Session is the production implementation.
type ImportContext interface {
	Phase() domain.SyncPhase
	EntityAttribute(name string) string
	Property(name string) string
	ReplaceTokens(text string) string
}

// Processor drives phase-appropriate queries against the store and pulls
// their results. The active phase is read from the import context on
// every pull: full import and delta import feed NextRow, delta discovery
// feeds NextModifiedKey, and any other phase leaves the processor inert,
// draining immediately without touching the store.
//
// All counters live on the processor and die with it. A processor serves
// one run on one goroutine.
type Processor struct {
	store    driven.Datastore
	rewriter *datetime.Rewriter
	limiter  *rate.Limiter

	ic     ImportContext
	phase  domain.SyncPhase
	stream *RecordStream
	stats  domain.ImportStats
}

// NewProcessor creates a processor. limiter may be nil for unthrottled
// querying.
func NewProcessor(store driven.Datastore, rewriter *datetime.Rewriter, limiter *rate.Limiter) *Processor {
	if rewriter == nil {
		rewriter = datetime.NewRewriter()
	}
	return &Processor{store: store, rewriter: rewriter, limiter: limiter}
}

// Prepare points the processor at a new unit of work, discarding any
// stream left from the previous one. Counters carry across Prepare calls;
// they belong to the processor's whole lifetime.
func (p *Processor) Prepare(ctx context.Context, ic ImportContext) {
	p.discardStream(ctx)
	p.ic = ic
}

// NextRow pulls the next imported record. During full import rows come
// from the entity's query attribute, during delta import from its
// deltaImportQuery attribute. Any other phase reports ErrStreamDrained
// without querying.
func (p *Processor) NextRow(ctx context.Context) (domain.FlatRecord, error) {
	phase := p.currentPhase()
	if phase != domain.PhaseFullImport && phase != domain.PhaseDeltaImport {
		return nil, domain.ErrStreamDrained
	}
	if err := p.ensureStream(ctx, phase); err != nil {
		return nil, err
	}

	rec, err := p.stream.Next(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrStreamDrained) {
			// The faulted stream closed itself; drop it so a later pull
			// issues the query afresh.
			p.stream = nil
		}
		return nil, err
	}
	p.stats.RowsRead++
	return rec, nil
}

// NextModifiedKey pulls the next change marker during delta discovery.
// Rows whose record carries no id are skipped with a warning. Any phase
// other than delta discovery reports ErrStreamDrained without querying.
func (p *Processor) NextModifiedKey(ctx context.Context) (domain.ChangeMarker, error) {
	if p.currentPhase() != domain.PhaseDeltaDiscovery {
		return domain.ChangeMarker{}, domain.ErrStreamDrained
	}
	if err := p.ensureStream(ctx, domain.PhaseDeltaDiscovery); err != nil {
		return domain.ChangeMarker{}, err
	}

	for {
		rec, err := p.stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrStreamDrained) {
				p.stream = nil
			}
			return domain.ChangeMarker{}, err
		}
		p.stats.RowsRead++

		id, ok := rec.ID()
		if !ok {
			logger.Warn("delta discovery: skipping row without %s", domain.IDField)
			continue
		}
		p.stats.KeysDiscovered++
		return domain.ChangeMarker{ID: id}, nil
	}
}

// Stats returns the counters accumulated so far.
func (p *Processor) Stats() domain.ImportStats { return p.stats }

// Close releases the current stream, if any.
func (p *Processor) Close(ctx context.Context) error {
	if p.stream == nil {
		return nil
	}
	err := p.stream.Close(ctx)
	p.stream = nil
	return err
}

func (p *Processor) currentPhase() domain.SyncPhase {
	if p.ic == nil {
		return domain.PhaseNone
	}
	return p.ic.Phase()
}

// ensureStream opens the phase-appropriate stream if none is live. A
// stream built for a different phase is discarded first.
func (p *Processor) ensureStream(ctx context.Context, phase domain.SyncPhase) error {
	if p.stream != nil && p.phase != phase {
		p.discardStream(ctx)
	}
	if p.stream != nil {
		return nil
	}

	attr := domain.QueryAttribute(phase)
	raw := p.ic.EntityAttribute(attr)
	if strings.TrimSpace(raw) == "" {
		return &domain.ConfigError{Key: attr, Reason: fmt.Sprintf("attribute is required for %s", phase)}
	}
	collection := p.ic.EntityAttribute(domain.AttrCollection)
	if strings.TrimSpace(collection) == "" {
		return &domain.ConfigError{Key: domain.AttrCollection, Reason: "collection must not be empty"}
	}

	substituted := p.ic.ReplaceTokens(raw)
	final, warnings := p.rewriter.Rewrite(substituted)
	for _, w := range warnings {
		logger.Warn("%s", w)
	}
	p.stats.DateWarnings += int64(len(warnings))

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	logger.Debug("%s query on %s: %s", phase, collection, final)
	p.stats.Queries++
	cursor, err := p.store.Query(ctx, collection, final)
	if err != nil {
		return err
	}

	mapFields := p.ic.Property(domain.PropMapFields) != "false"
	p.stream = NewRecordStream(cursor, final, mapFields)
	p.phase = phase
	return nil
}

func (p *Processor) discardStream(ctx context.Context) {
	if p.stream == nil {
		return
	}
	if err := p.stream.Close(ctx); err != nil {
		logger.Warn("discarding stream: %v", err)
	}
	p.stream = nil
}
