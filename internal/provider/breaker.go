package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// BreakerConfig holds circuit breaker settings for a record source.
type BreakerConfig struct {
	FailThreshold uint32        // consecutive failures before opening (default 5)
	Cooldown      time.Duration // how long to stay open before half-open (default 30s)
	Logger        *slog.Logger
}

// BreakerSource fails fast once the wrapped source has failed repeatedly.
type BreakerSource struct {
	source RunRecordSource
	cb     *gobreaker.CircuitBreaker
}

// WithBreaker wraps src in a circuit breaker.
func WithBreaker(src RunRecordSource, cfg BreakerConfig) *BreakerSource {
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.FailThreshold

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "monitoring-store",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Cancellation is the caller's doing, not a store fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	return &BreakerSource{source: src, cb: cb}
}

// QueryRuns implements RunRecordSource.
func (b *BreakerSource) QueryRuns(ctx context.Context, q types.RunQuery) ([]types.RunRecord, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.QueryRuns(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	records, _ := out.([]types.RunRecord)
	return records, nil
}

// State returns the breaker's current state name.
func (b *BreakerSource) State() string {
	return b.cb.State().String()
}
