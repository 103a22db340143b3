// Package watcher polls feed status for the current business day and raises
// alerts when a feed becomes alarming.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

const defaultInterval = 60 * time.Second

// StatusSource reports feed status for a date.
type StatusSource interface {
	FeedStatuses(ctx context.Context, names []string, date time.Time) ([]types.FeedReport, error)
}

// BusinessDayResolver maps a wall-clock time to its business day.
type BusinessDayResolver interface {
	CurrentBusinessDay(ctx context.Context, ref time.Time) (time.Time, error)
}

// Watcher periodically evaluates feeds and alerts on status transitions.
type Watcher struct {
	source  StatusSource
	days    BusinessDayResolver
	alertFn func(context.Context, types.Alert)
	logger  *slog.Logger

	interval time.Duration
	window   *alertWindow
	feeds    []string
	now      func() time.Time

	mu   sync.Mutex
	date time.Time
	last map[string]types.FeedStatus

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// WithFeeds restricts polling to the named feeds. By default every
// registered feed is polled.
func WithFeeds(names []string) Option {
	return func(w *Watcher) { w.feeds = names }
}

// New creates a Watcher. An invalid interval or alert window is an error.
func New(source StatusSource, days BusinessDayResolver, alertFn func(context.Context, types.Alert), logger *slog.Logger, cfg types.WatcherConfig, opts ...Option) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		source:   source,
		days:     days,
		alertFn:  alertFn,
		logger:   logger,
		interval: defaultInterval,
		now:      time.Now,
		last:     make(map[string]types.FeedStatus),
	}

	if cfg.Interval != "" {
		d, err := time.ParseDuration(cfg.Interval)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid watcher interval %q", cfg.Interval)
		}
		w.interval = d
	}
	if cfg.AlertWindow != nil {
		win, err := parseAlertWindow(*cfg.AlertWindow)
		if err != nil {
			return nil, err
		}
		w.window = win
	}

	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins the polling loop. The first poll runs immediately.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Info("watcher started", "interval", w.interval)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.Poll(ctx)

		for {
			select {
			case <-ctx.Done():
				w.logger.Info("watcher stopping")
				return
			case <-ticker.C:
				w.Poll(ctx)
			}
		}
	}()
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop(ctx context.Context) {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("watcher stopped")
	case <-ctx.Done():
		w.logger.Warn("watcher stop timed out")
	}
}
