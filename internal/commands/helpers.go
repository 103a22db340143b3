// Package commands implements the CLI subcommands for the feedwatch binary.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/config"
	"github.com/dwsmith1983/feedwatch/internal/engine"
	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/internal/provider"
	"github.com/dwsmith1983/feedwatch/internal/provider/postgres"
	"github.com/dwsmith1983/feedwatch/internal/provider/redis"
	"github.com/dwsmith1983/feedwatch/internal/provider/sqlite"
	"github.com/dwsmith1983/feedwatch/internal/service"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// dateLayout is the YYYYMMDD form used on the command line and in URLs.
const dateLayout = "20060102"

// newLogger builds the slog logger described by cfg.
func newLogger(cfg *types.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	format := "text"
	if cfg != nil {
		if cfg.Level != "" {
			if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
				return nil, fmt.Errorf("logging level: %w", err)
			}
		}
		if cfg.Format != "" {
			format = strings.ToLower(cfg.Format)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown logging format %q", format)
	}
}

// sources holds the opened record and business-day sources.
type sources struct {
	records provider.RunRecordSource
	days    provider.BusinessDaySource
	pinger  interface{ Ping(context.Context) error }
	close   func()
}

// openSources connects the configured record provider. Records are read
// through a circuit breaker; business days come from the named holiday
// calendar when one is configured, otherwise from the store.
func openSources(ctx context.Context, cfg *types.ProjectConfig, logger *slog.Logger) (*sources, error) {
	var (
		store interface {
			provider.RunRecordSource
			provider.BusinessDaySource
			Ping(context.Context) error
		}
		closeFn func()
	)

	switch cfg.Provider {
	case config.ProviderPostgres:
		if err := config.ResolveSecrets(ctx, cfg); err != nil {
			return nil, err
		}
		pg, err := postgres.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		store, closeFn = pg, pg.Close
	case config.ProviderSQLite, config.ProviderMemory:
		path, migrate := ":memory:", true
		if cfg.Provider == config.ProviderSQLite {
			path, migrate = cfg.SQLite.Path, cfg.SQLite.Migrate
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		store, closeFn = db, func() { _ = db.Close() }
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	src := &sources{
		records: provider.WithBreaker(store, breakerConfig(cfg.Breaker, logger)),
		days:    store,
		pinger:  store,
		close:   closeFn,
	}

	if cfg.Calendar != nil && cfg.Calendar.Name != "" {
		calReg, err := config.Calendars(cfg)
		if err != nil {
			closeFn()
			return nil, err
		}
		holidays, err := calReg.Source(cfg.Calendar.Name)
		if err != nil {
			closeFn()
			return nil, err
		}
		src.days = holidays
	}
	return src, nil
}

func breakerConfig(cfg *types.BreakerConfig, logger *slog.Logger) provider.BreakerConfig {
	out := provider.BreakerConfig{Logger: logger}
	if cfg == nil {
		return out
	}
	if cfg.FailThreshold > 0 {
		out.FailThreshold = uint32(cfg.FailThreshold)
	}
	if d, err := time.ParseDuration(cfg.Cooldown); err == nil {
		out.Cooldown = d
	}
	return out
}

// newService builds the status service over src. The returned cleanup
// closes the Redis cache when one is configured.
func newService(cfg *types.ProjectConfig, src *sources, logger *slog.Logger) (*service.Service, func(), error) {
	reg, err := config.Feeds(cfg)
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(src.records, src.days, engine.WithLogger(logger))
	opts := []service.Option{service.WithLogger(logger), service.WithFeeds(cfg.Feeds)}
	cleanup := func() {}

	if cfg.Redis != nil {
		cache := redis.New(cfg.Redis)
		opts = append(opts, service.WithCache(cache))
		if ttl, err := time.ParseDuration(cfg.Redis.TTL); err == nil {
			opts = append(opts, service.WithCacheTTL(ttl))
		}
		cleanup = func() { _ = cache.Close() }
	}
	return service.New(eng, reg, opts...), cleanup, nil
}

// loadFeedRegistry returns the configured feeds, or the built-in feeds in
// the local zone when dir holds no config file.
func loadFeedRegistry(dir string) (*feed.Registry, error) {
	cfg, err := config.Load(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return feed.Builtin(time.Local), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return config.Feeds(cfg)
}

// parseDate parses a YYYYMMDD argument as a calendar day in UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYYMMDD", s)
	}
	return t, nil
}
