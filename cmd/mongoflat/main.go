// Command mongoflat imports document-store collections into flat,
// queryable records.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mongoflat/mongoflat/internal/adapters/driven/config/file"
	"github.com/mongoflat/mongoflat/internal/adapters/driven/storage/sqlite"
	"github.com/mongoflat/mongoflat/internal/adapters/driving/cli"
	"github.com/mongoflat/mongoflat/internal/connectors/memstore"
	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/core/services"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	cli.Execute()
}

// bootstrap wires adapters and services once the root flags are parsed.
func bootstrap(opts cli.BootstrapOptions) error {
	ctx := context.Background()

	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("locating configuration: %w", err)
	}
	cli.SetConfigStore(configStore)

	cfg, err := configStore.Load(ctx)
	if err != nil {
		return err
	}

	if cfg.Settings.Password == "" && opts.PromptPassword != nil {
		cfg.Settings.Password = opts.PromptPassword()
	}
	if opts.ScheduleInterval > 0 {
		cfg.Schedule.Enabled = true
		cfg.Schedule.Interval = opts.ScheduleInterval
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}

	open := memstore.Open(fixturesPath(opts.Fixtures))
	datastore := newLazyDatastore(open, cfg.Settings)
	wire(cfg, datastore, store)

	// The watch command swaps services out when the configuration file
	// changes. A reloaded config without a password keeps the one the
	// run started with.
	password := cfg.Settings.Password
	current := datastore
	cli.SetRebuild(func(next domain.Config) error {
		if next.Settings.Password == "" {
			next.Settings.Password = password
		}
		if err := current.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "closing previous store connection: %v\n", err)
		}
		current = newLazyDatastore(open, next.Settings)
		wire(next, current, store)
		return nil
	})

	return nil
}

// wire builds the core services over the adapters and hands them to the
// command layer.
func wire(cfg domain.Config, datastore driven.Datastore, store *sqlite.Store) {
	runner := services.NewRunner(cfg, datastore, store.RecordSink(), store.StateStore(), store.RunStore())
	cli.SetImporter(runner)
	cli.SetScheduler(services.NewScheduler(cfg, runner, store.StateStore()))
	cli.SetBrowseService(services.NewBrowseService(store, store.RunStore()))
}

// fixturesPath resolves the fixture directory for the memstore
// connector.
func fixturesPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "fixtures"
	}
	return filepath.Join(home, ".mongoflat", "fixtures")
}

// lazyDatastore defers opening the document store until the first use,
// so commands that only browse stored records do not need the fixture
// directory present.
type lazyDatastore struct {
	open     driven.OpenDatastore
	settings domain.StoreSettings

	mu    sync.Mutex
	store driven.Datastore
}

// Ensure lazyDatastore implements the interface.
var _ driven.Datastore = (*lazyDatastore)(nil)

func newLazyDatastore(open driven.OpenDatastore, settings domain.StoreSettings) *lazyDatastore {
	return &lazyDatastore{open: open, settings: settings}
}

func (l *lazyDatastore) connect(ctx context.Context) (driven.Datastore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		store, err := l.open(ctx, l.settings)
		if err != nil {
			return nil, err
		}
		l.store = store
	}
	return l.store, nil
}

func (l *lazyDatastore) Query(ctx context.Context, collection, filter string) (driven.Cursor, error) {
	store, err := l.connect(ctx)
	if err != nil {
		return nil, err
	}
	return store.Query(ctx, collection, filter)
}

func (l *lazyDatastore) Ping(ctx context.Context) error {
	store, err := l.connect(ctx)
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

func (l *lazyDatastore) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	err := l.store.Close(ctx)
	l.store = nil
	return err
}
