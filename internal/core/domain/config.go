package domain

import (
	"fmt"
	"time"
)

// RateLimit caps how fast queries are issued against the store. Zero
// PerSecond means unlimited.
type RateLimit struct {
	PerSecond float64
	Burst     int
}

// Enabled reports whether the limit constrains anything.
func (r RateLimit) Enabled() bool { return r.PerSecond > 0 }

// ScheduleConfig controls the background import scheduler.
type ScheduleConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Config is the application configuration: one store, any number of
// entities, and run-level knobs.
type Config struct {
	Settings StoreSettings
	Entities []Entity
	Limit    RateLimit
	Schedule ScheduleConfig
}

// FindEntity returns the named entity.
func (c Config) FindEntity(name string) (Entity, error) {
	for _, e := range c.Entities {
		if e.Name == name {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("entity %q: %w", name, ErrNotFound)
}

// EntityNames lists the configured entity names in order.
func (c Config) EntityNames() []string {
	names := make([]string, len(c.Entities))
	for i, e := range c.Entities {
		names[i] = e.Name
	}
	return names
}

// Validate checks the whole configuration, reporting the first problem.
func (c Config) Validate() error {
	if len(c.Entities) == 0 {
		return &ConfigError{Key: "entity", Reason: "at least one entity must be configured"}
	}
	seen := make(map[string]struct{}, len(c.Entities))
	for _, e := range c.Entities {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := seen[e.Name]; dup {
			return &ConfigError{Key: AttrName, Reason: fmt.Sprintf("duplicate entity name %q", e.Name)}
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}
