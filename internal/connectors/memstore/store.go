package memstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/docparse"
)

// Memstore holds named collections of documents in memory and serves
// queries against them. It is safe for concurrent use.
type Memstore struct {
	mu          sync.RWMutex
	database    string
	collections map[string][]domain.Document
	closed      bool
}

var _ driven.Datastore = (*Memstore)(nil)

// New creates an empty store for the given database name.
func New(database string) *Memstore {
	return &Memstore{
		database:    database,
		collections: make(map[string][]domain.Document),
	}
}

// Open returns a datastore factory that serves every connection from
// fixture files under dir. An empty dir yields empty stores. The factory
// ignores host settings; the database name is kept for diagnostics.
func Open(dir string) driven.OpenDatastore {
	return func(ctx context.Context, settings domain.StoreSettings) (driven.Datastore, error) {
		store := New(settings.Database)
		if dir != "" {
			if err := store.LoadDir(dir); err != nil {
				return nil, &domain.ConnectionError{Target: dir, Cause: err}
			}
		}
		return store, nil
	}
}

// AddCollection appends documents to a collection, creating it if needed.
func (m *Memstore) AddCollection(name string, docs ...domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = append(m.collections[name], docs...)
}

// LoadDir loads every .json, .yaml and .yml file in dir as a collection
// named after the file. Subdirectories and other extensions are skipped.
func (m *Memstore) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		collection := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := m.LoadFile(collection, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads the documents in path into the named collection. The
// file may hold a single document, a top-level array, or a YAML stream.
func (m *Memstore) LoadFile(collection, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	docs, err := docparse.Documents(string(data))
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	m.AddCollection(collection, docs...)
	return nil
}

// Collections lists the collection names in sorted order.
func (m *Memstore) Collections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count reports how many documents a collection holds.
func (m *Memstore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

// Query evaluates the filter against the named collection and returns a
// cursor over a snapshot of the matching documents. Querying a missing
// collection yields an empty cursor, mirroring document-store behaviour.
func (m *Memstore) Query(ctx context.Context, collection, filter string) (driven.Cursor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, &domain.ConnectionError{Target: m.database, Cause: ErrClosed}
	}

	filterDoc, err := docparse.Document(filter)
	if err != nil {
		return nil, &domain.QueryError{Query: filter, Cause: err}
	}
	match, err := compile(filterDoc)
	if err != nil {
		return nil, &domain.QueryError{Query: filter, Cause: err}
	}

	var matched []domain.Document
	for _, doc := range m.collections[collection] {
		if match(doc) {
			matched = append(matched, doc)
		}
	}
	return &cursor{docs: matched}, nil
}

// Ping reports whether the store is still usable.
func (m *Memstore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return &domain.ConnectionError{Target: m.database, Cause: ErrClosed}
	}
	return nil
}

// Close marks the store closed. Closing twice is harmless; cursors that
// were handed out before the close keep their snapshots.
func (m *Memstore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
