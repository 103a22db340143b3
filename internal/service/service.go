// Package service joins feed descriptors with engine results into the
// reports served by the CLI, the HTTP API and the watcher.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwsmith1983/feedwatch/internal/calendar"
	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/internal/metrics"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

const (
	defaultConcurrency = 4
	defaultCacheTTL    = 24 * time.Hour
)

// Evaluator computes the status of one feed for one business date.
type Evaluator interface {
	Status(ctx context.Context, desc types.Descriptor, businessDate time.Time) types.StatusResult
}

// Cache stores finalized reports.
type Cache interface {
	Get(ctx context.Context, feed string, date time.Time) (*types.FeedReport, bool, error)
	Put(ctx context.Context, report types.FeedReport, ttl time.Duration) error
}

// Service evaluates registered feeds.
type Service struct {
	eval        Evaluator
	registry    *feed.Registry
	feeds       []string
	cache       Cache
	cacheTTL    time.Duration
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFeeds sets the feeds evaluated when a caller names none.
func WithFeeds(names []string) Option {
	return func(s *Service) { s.feeds = append([]string(nil), names...) }
}

// WithCache enables caching of PRICED reports for past dates.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithCacheTTL sets how long cached reports live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithConcurrency bounds how many feeds are evaluated at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the clock that decides whether a date is final.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service over reg's feeds.
func New(eval Evaluator, reg *feed.Registry, opts ...Option) *Service {
	s := &Service{
		eval:        eval,
		registry:    reg,
		cacheTTL:    defaultCacheTTL,
		concurrency: defaultConcurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the feed registry the service evaluates.
func (s *Service) Registry() *feed.Registry {
	return s.registry
}

// FeedStatus reports the status of one feed. Unknown feeds return an error
// wrapping feed.ErrUnsupportedFeed.
func (s *Service) FeedStatus(ctx context.Context, name string, date time.Time) (types.FeedReport, error) {
	desc, err := s.registry.Get(name)
	if err != nil {
		return types.FeedReport{}, err
	}
	return s.report(ctx, desc, date), nil
}

// FeedStatuses reports several feeds concurrently, in the order given.
// An empty names evaluates the feeds set with WithFeeds, or every registered
// feed when none were set. Any unknown name fails
// the whole call before evaluation starts.
func (s *Service) FeedStatuses(ctx context.Context, names []string, date time.Time) ([]types.FeedReport, error) {
	if len(names) == 0 {
		names = s.feeds
	}
	if len(names) == 0 {
		names = s.registry.Names()
	}

	descs := make([]types.Descriptor, len(names))
	for i, name := range names {
		d, err := s.registry.Get(name)
		if err != nil {
			return nil, err
		}
		descs[i] = d
	}

	reports := make([]types.FeedReport, len(descs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, d := range descs {
		g.Go(func() error {
			reports[i] = s.report(gctx, d, date)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluating feeds: %w", err)
	}
	return reports, nil
}

func (s *Service) report(ctx context.Context, desc types.Descriptor, date time.Time) types.FeedReport {
	cacheable := s.cache != nil && s.isPast(date)
	if cacheable {
		cached, ok, err := s.cache.Get(ctx, desc.Name, date)
		switch {
		case err != nil:
			s.logger.Warn("status cache read failed", "feed", desc.Name, "date", date.Format(time.DateOnly), "error", err)
		case ok:
			metrics.CacheHits.Add(1)
			return *cached
		default:
			metrics.CacheMisses.Add(1)
		}
	}

	res := s.eval.Status(ctx, desc, date)
	report := types.FeedReport{
		Feed:     desc.Name,
		Date:     date,
		Status:   res.Status,
		AsOf:     res.Timestamp,
		Category: desc.Category,
		Failure:  string(res.Failure),
	}
	if desc.ExpectedETA != nil {
		report.NormalETA = desc.ExpectedETA(date)
	}

	if cacheable && res.Status == types.StatusPriced {
		if err := s.cache.Put(ctx, report, s.cacheTTL); err != nil {
			s.logger.Warn("status cache write failed", "feed", desc.Name, "date", date.Format(time.DateOnly), "error", err)
		}
	}
	return report
}

// isPast reports whether date is a calendar day before today. Only those
// results are final.
func (s *Service) isPast(date time.Time) bool {
	return dayOf(date).Before(dayOf(s.now()))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return calendar.Date(y, m, d)
}
