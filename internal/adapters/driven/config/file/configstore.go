package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// defaultScheduleInterval applies when the schedule is enabled without an
// interval of its own.
const defaultScheduleInterval = 15 * time.Minute

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	filePath string
}

// fileConfig mirrors the TOML layout of the configuration file.
//
// The [store] table holds flat string properties, the same key/value
// shape the connection layer parses. Entities are [[entity]] blocks.
type fileConfig struct {
	Store    map[string]string `toml:"store"`
	Limit    limitConfig       `toml:"limit"`
	Schedule scheduleConfig    `toml:"schedule"`
	Entities []entityConfig    `toml:"entity"`
}

type limitConfig struct {
	PerSecond float64 `toml:"per_second"`
	Burst     int     `toml:"burst"`
}

type scheduleConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
}

type entityConfig struct {
	Name             string            `toml:"name"`
	Collection       string            `toml:"collection"`
	Query            string            `toml:"query"`
	DeltaQuery       string            `toml:"deltaQuery"`
	DeltaImportQuery string            `toml:"deltaImportQuery"`
	Tokens           map[string]string `toml:"tokens"`
}

// NewConfigStore creates a config store reading the given TOML file.
// If path is empty, defaults to ~/.mongoflat/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".mongoflat", "config.toml")
	}
	return &ConfigStore{filePath: path}, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Load reads and validates the configuration file.
func (s *ConfigStore) Load(ctx context.Context) (domain.Config, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return domain.Config{}, fmt.Errorf("reading config %s: %w", s.filePath, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return domain.Config{}, &domain.ConfigError{Key: "config", Reason: fmt.Sprintf("malformed TOML: %v", err)}
	}

	settings, err := domain.ParseStoreSettings(fc.Store)
	if err != nil {
		return domain.Config{}, err
	}

	schedule := domain.ScheduleConfig{Enabled: fc.Schedule.Enabled}
	if fc.Schedule.Interval != "" {
		interval, err := time.ParseDuration(fc.Schedule.Interval)
		if err != nil || interval <= 0 {
			return domain.Config{}, &domain.ConfigError{
				Key:    "schedule.interval",
				Reason: fmt.Sprintf("invalid interval %q", fc.Schedule.Interval),
			}
		}
		schedule.Interval = interval
	} else if fc.Schedule.Enabled {
		schedule.Interval = defaultScheduleInterval
	}

	entities := make([]domain.Entity, len(fc.Entities))
	for i, ec := range fc.Entities {
		entities[i] = domain.Entity{
			Name:             ec.Name,
			Collection:       ec.Collection,
			Query:            ec.Query,
			DeltaQuery:       ec.DeltaQuery,
			DeltaImportQuery: ec.DeltaImportQuery,
			Tokens:           ec.Tokens,
		}
		// An entity stands for one collection; default to its own name.
		if entities[i].Collection == "" {
			entities[i].Collection = ec.Name
		}
	}

	cfg := domain.Config{
		Settings: settings,
		Entities: entities,
		Limit:    domain.RateLimit{PerSecond: fc.Limit.PerSecond, Burst: fc.Limit.Burst},
		Schedule: schedule,
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}
