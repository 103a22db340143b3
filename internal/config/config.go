// Package config handles loading and validation of feedwatch.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/feedwatch/internal/calendar"
	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// FileName is the project configuration file looked up by Load.
const FileName = "feedwatch.yaml"

// Supported record providers.
const (
	ProviderPostgres = "postgres"
	ProviderSQLite   = "sqlite"
	ProviderMemory   = "memory"
)

// Load reads and parses feedwatch.yaml from the given directory.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *types.ProjectConfig) {
	if cfg.Server == nil {
		cfg.Server = &types.ServerConfig{}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Watcher == nil {
		cfg.Watcher = &types.WatcherConfig{}
	}
	if cfg.Watcher.Interval == "" {
		cfg.Watcher.Interval = "60s"
	}
	if cfg.Logging == nil {
		cfg.Logging = &types.LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Redis != nil && cfg.Redis.TTL == "" {
		cfg.Redis.TTL = "24h"
	}
}

func validate(cfg *types.ProjectConfig) error {
	switch cfg.Provider {
	case "":
		return fmt.Errorf("provider is required")
	case ProviderPostgres:
		if cfg.Postgres == nil {
			return fmt.Errorf("postgres config is required when provider is postgres")
		}
		if cfg.Postgres.DSN == "" && cfg.Postgres.DSNSecret == "" {
			return fmt.Errorf("postgres.dsn or postgres.dsnSecret is required")
		}
	case ProviderSQLite:
		if cfg.SQLite == nil || cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required when provider is sqlite")
		}
	case ProviderMemory:
		if cfg.Calendar == nil || cfg.Calendar.Name == "" {
			return fmt.Errorf("calendar.name is required when provider is memory")
		}
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if _, err := Location(cfg); err != nil {
		return err
	}
	if _, err := time.ParseDuration(cfg.Watcher.Interval); err != nil {
		return fmt.Errorf("watcher.interval: %w", err)
	}
	if w := cfg.Watcher.AlertWindow; w != nil && (w.Start == "" || w.End == "") {
		return fmt.Errorf("watcher.alertWindow needs start and end")
	}
	if cfg.Redis != nil {
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required")
		}
		if _, err := time.ParseDuration(cfg.Redis.TTL); err != nil {
			return fmt.Errorf("redis.ttl: %w", err)
		}
	}
	if cfg.Breaker != nil {
		if cfg.Breaker.FailThreshold < 0 {
			return fmt.Errorf("breaker.failThreshold must not be negative")
		}
		if cfg.Breaker.Cooldown != "" {
			if _, err := time.ParseDuration(cfg.Breaker.Cooldown); err != nil {
				return fmt.Errorf("breaker.cooldown: %w", err)
			}
		}
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q", cfg.Logging.Format)
	}

	if _, err := Feeds(cfg); err != nil {
		return err
	}
	if _, err := Calendars(cfg); err != nil {
		return err
	}
	return nil
}

// Location returns the timezone feed ETAs are expressed in. An empty
// timezone means the local zone.
func Location(cfg *types.ProjectConfig) (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// Feeds builds the feed registry: the built-in feeds plus every feed file
// under feedDirs. Every name in feeds must resolve.
func Feeds(cfg *types.ProjectConfig) (*feed.Registry, error) {
	loc, err := Location(cfg)
	if err != nil {
		return nil, err
	}
	reg := feed.Builtin(loc)
	for _, dir := range cfg.FeedDirs {
		if err := reg.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	for _, name := range cfg.Feeds {
		if _, err := reg.Get(name); err != nil {
			return nil, fmt.Errorf("feeds: %w", err)
		}
	}
	return reg, nil
}

// Calendars loads the holiday calendars under calendar.dirs. A configured
// calendar name must resolve.
func Calendars(cfg *types.ProjectConfig) (*calendar.Registry, error) {
	reg := calendar.NewRegistry()
	if cfg.Calendar == nil {
		return reg, nil
	}
	for _, dir := range cfg.Calendar.Dirs {
		if err := reg.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	if cfg.Calendar.Name != "" {
		if _, err := reg.Source(cfg.Calendar.Name); err != nil {
			return nil, fmt.Errorf("calendar: %w", err)
		}
	}
	return reg, nil
}
