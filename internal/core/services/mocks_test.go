package services

import (
	"context"
	"sort"
	"sync"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// Hand-rolled fakes for the driven ports used across the service tests.

type fakeCursor struct {
	docs     []domain.Document
	failAt   int
	err      error
	closeErr error
	pos      int
	faulted  bool
	closes   int
}

func newFakeCursor(docs ...domain.Document) *fakeCursor {
	return &fakeCursor{docs: docs, failAt: -1}
}

func (c *fakeCursor) Next(context.Context) bool {
	if c.faulted {
		return false
	}
	if c.failAt >= 0 && c.pos == c.failAt {
		c.faulted = true
		return false
	}
	if c.pos >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Document() domain.Document { return c.docs[c.pos-1] }

func (c *fakeCursor) Err() error {
	if c.faulted {
		return c.err
	}
	return nil
}

func (c *fakeCursor) Close(context.Context) error {
	c.closes++
	return c.closeErr
}

type queryCall struct {
	collection string
	filter     string
}

type fakeDatastore struct {
	byFilter map[string]*fakeCursor
	errFor   map[string]error
	queries  []queryCall
	pings    int
	closed   bool
}

func newFakeDatastore() *fakeDatastore {
	return &fakeDatastore{
		byFilter: make(map[string]*fakeCursor),
		errFor:   make(map[string]error),
	}
}

func (d *fakeDatastore) on(filter string, docs ...domain.Document) *fakeCursor {
	cur := newFakeCursor(docs...)
	d.byFilter[filter] = cur
	return cur
}

func (d *fakeDatastore) Query(_ context.Context, collection, filter string) (driven.Cursor, error) {
	d.queries = append(d.queries, queryCall{collection: collection, filter: filter})
	if err, ok := d.errFor[filter]; ok {
		return nil, &domain.QueryError{Query: filter, Cause: err}
	}
	if cur, ok := d.byFilter[filter]; ok {
		return cur, nil
	}
	return newFakeCursor(), nil
}

func (d *fakeDatastore) Ping(context.Context) error { d.pings++; return nil }

func (d *fakeDatastore) Close(context.Context) error { d.closed = true; return nil }

type sinkWrite struct {
	entity string
	rec    domain.FlatRecord
}

type fakeSink struct {
	mu        sync.Mutex
	writes    []sinkWrite
	flushes   int
	failAfter int
	writeErr  error
}

func newFakeSink() *fakeSink { return &fakeSink{failAfter: -1} }

func (s *fakeSink) Write(_ context.Context, entity string, rec domain.FlatRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter >= 0 && len(s.writes) >= s.failAfter {
		return s.writeErr
	}
	s.writes = append(s.writes, sinkWrite{entity: entity, rec: rec})
	return nil
}

func (s *fakeSink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

type fakeStateStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{values: make(map[string]string)}
}

func (s *fakeStateStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *fakeStateStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *fakeStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

type fakeBrowser struct {
	counts  []domain.EntityCount
	records map[string][]domain.FlatRecord
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{records: make(map[string][]domain.FlatRecord)}
}

func (b *fakeBrowser) Entities(context.Context) ([]domain.EntityCount, error) {
	return b.counts, nil
}

func (b *fakeBrowser) Records(_ context.Context, entity string, limit int) ([]domain.FlatRecord, error) {
	recs := b.records[entity]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (b *fakeBrowser) Record(_ context.Context, entity, id string) (domain.FlatRecord, error) {
	for _, rec := range b.records[entity] {
		if recID, ok := rec.ID(); ok && recID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeRunStore struct {
	mu   sync.Mutex
	runs map[string]domain.RunSummary
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[string]domain.RunSummary)}
}

func (s *fakeRunStore) Save(_ context.Context, run domain.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *fakeRunStore) Get(_ context.Context, id string) (domain.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return domain.RunSummary{}, domain.ErrNotFound
	}
	return run, nil
}

func (s *fakeRunStore) List(_ context.Context, entity string, limit int) ([]domain.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RunSummary
	for _, run := range s.runs {
		if entity == "" || run.Entity == entity {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
