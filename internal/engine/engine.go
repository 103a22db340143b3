// Package engine derives the status of a pricing feed for a business date
// from the run records of its configured jobs.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwsmith1983/feedwatch/internal/calendar"
	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/internal/metrics"
	"github.com/dwsmith1983/feedwatch/internal/provider"
	"github.com/dwsmith1983/feedwatch/internal/schedule"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

const instrumentationName = "github.com/dwsmith1983/feedwatch/internal/engine"

// Engine evaluates feed status. It holds no per-feed state and is safe for
// concurrent use.
type Engine struct {
	source   provider.RunRecordSource
	calendar *calendar.Calendar
	now      func() time.Time
	logger   *slog.Logger

	tracer      trace.Tracer
	evaluations metric.Int64Counter
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for DELAYED, PENDING and
// EXCEPTION timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine reading runs from source and business days from days.
func New(source provider.RunRecordSource, days provider.BusinessDaySource, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		calendar: calendar.New(days),
		now:      time.Now,
		logger:   slog.Default(),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"feedwatch.status.evaluations",
		metric.WithDescription("Feed status evaluations by feed and status"),
	)
	if err != nil {
		e.logger.Warn("status counter unavailable", "error", err)
	}
	e.evaluations = counter
	return e
}

// Status evaluates desc for businessDate. Store and configuration failures
// are reported as EXCEPTION in the result; Status never returns an error.
func (e *Engine) Status(ctx context.Context, desc types.Descriptor, businessDate time.Time) types.StatusResult {
	ctx, span := e.tracer.Start(ctx, "engine.Status", trace.WithAttributes(
		attribute.String("feed", desc.Name),
		attribute.String("businessDate", businessDate.Format(time.DateOnly)),
	))
	defer span.End()

	res := e.evaluate(ctx, desc, businessDate)

	span.SetAttributes(attribute.String("status", string(res.Status)))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	if e.evaluations != nil {
		e.evaluations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("feed", desc.Name),
			attribute.String("status", string(res.Status)),
		))
	}
	metrics.StatusEvaluations.Add(1)
	if res.Status == types.StatusException {
		metrics.StatusExceptions.Add(1)
	}
	return res
}

func (e *Engine) evaluate(ctx context.Context, desc types.Descriptor, date time.Time) types.StatusResult {
	result := func(status types.FeedStatus, ts time.Time) types.StatusResult {
		return types.StatusResult{Feed: desc.Name, BusinessDate: date, Status: status, Timestamp: ts}
	}
	fail := func(kind types.FailureKind, err error) types.StatusResult {
		r := result(types.StatusException, e.now())
		r.Failure = kind
		r.Err = err
		return r
	}

	if kind, err := feed.Validate(desc); err != nil {
		e.logger.Error("invalid feed configuration", "feed", desc.Name, "failure", string(kind), "error", err)
		return fail(kind, err)
	}

	storeFailure := func(err error) types.StatusResult {
		e.logger.Error("status evaluation failed", "feed", desc.Name, "date", date.Format(time.DateOnly), "error", err)
		return fail(types.FailureStore, err)
	}

	if ts, ok, err := e.errored(ctx, desc, date); err != nil {
		return storeFailure(err)
	} else if ok {
		return result(types.StatusError, ts)
	}

	if ts, ok, err := e.priced(ctx, desc, date); err != nil {
		return storeFailure(err)
	} else if ok {
		return result(types.StatusPriced, ts)
	}

	if ts, ok, err := e.delayed(ctx, desc, date); err != nil {
		return storeFailure(err)
	} else if ok {
		return result(types.StatusDelayed, ts)
	}

	if ts, ok, err := e.inProgress(ctx, desc, date); err != nil {
		return storeFailure(err)
	} else if ok {
		return result(types.StatusInProgress, ts)
	}

	if ts, ok, err := e.pending(ctx, desc, date); err != nil {
		return storeFailure(err)
	} else if ok {
		return result(types.StatusPending, ts)
	}

	prev, err := e.calendar.PreviousBusinessDay(ctx, date)
	if err != nil {
		return storeFailure(err)
	}
	if ts, ok, err := e.priced(ctx, desc, prev); err != nil {
		return storeFailure(err)
	} else if ok {
		return result(types.StatusPriced, ts)
	}

	return result(types.StatusPending, e.now())
}

// errored scans every configured pair for ERROR records.
func (e *Engine) errored(ctx context.Context, desc types.Descriptor, date time.Time) (time.Time, bool, error) {
	var (
		latest time.Time
		found  bool
	)
	for _, p := range uniquePairs(desc.Checks.All()) {
		records, err := e.query(ctx, date, p)
		if err != nil {
			return time.Time{}, false, err
		}
		for _, r := range records {
			if r.Status != types.RunError {
				continue
			}
			if !found || r.AsOf.After(latest) {
				latest = r.AsOf
			}
			found = true
		}
	}
	return latest, found, nil
}

// priced requires a completion record for every completion pair.
func (e *Engine) priced(ctx context.Context, desc types.Descriptor, date time.Time) (time.Time, bool, error) {
	var latest time.Time
	for _, p := range pairs(desc.Checks.Completion) {
		records, err := e.query(ctx, date, p)
		if err != nil {
			return time.Time{}, false, err
		}
		ts, ok := latestWithStatus(records, types.RunComplete)
		if !ok {
			return time.Time{}, false, nil
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest, true, nil
}

func (e *Engine) delayed(ctx context.Context, desc types.Descriptor, date time.Time) (time.Time, bool, error) {
	_, priced, err := e.priced(ctx, desc, date)
	if err != nil || priced {
		return time.Time{}, false, err
	}
	now := e.now()
	if schedule.IsBreached(desc.ExpectedETA(date), now) {
		return now, true, nil
	}
	return time.Time{}, false, nil
}

func (e *Engine) inProgress(ctx context.Context, desc types.Descriptor, date time.Time) (time.Time, bool, error) {
	var (
		latest time.Time
		found  bool
	)
	for _, p := range pairs(desc.Checks.InProgress) {
		records, err := e.query(ctx, date, p)
		if err != nil {
			return time.Time{}, false, err
		}
		if ts, ok := latestWithStatus(records, types.RunInProgress); ok {
			if !found || ts.After(latest) {
				latest = ts
			}
			found = true
		}
	}
	return latest, found, nil
}

// pending reports the first pending pair that has not completed yet.
func (e *Engine) pending(ctx context.Context, desc types.Descriptor, date time.Time) (time.Time, bool, error) {
	if desc.Checks.Pending == nil {
		return time.Time{}, false, nil
	}
	for _, p := range pairs(desc.Checks.Pending) {
		records, err := e.query(ctx, date, p)
		if err != nil {
			return time.Time{}, false, err
		}
		if _, ok := latestWithStatus(records, types.RunComplete); !ok {
			return e.now(), true, nil
		}
	}
	return time.Time{}, false, nil
}

func (e *Engine) query(ctx context.Context, date time.Time, p pair) ([]types.RunRecord, error) {
	metrics.StoreQueries.Add(1)
	records, err := e.source.QueryRuns(ctx, types.RunQuery{
		Scenario:     types.BaseScenario,
		BusinessDate: date,
		RunGroup:     p.group,
		RunName:      p.name,
		RunType:      types.RunTypeRun,
	})
	if err != nil {
		metrics.StoreQueryErrors.Add(1)
		return nil, fmt.Errorf("querying %s/%s for %s: %w", p.group, p.name, date.Format(time.DateOnly), err)
	}
	return records, nil
}

type pair struct {
	group string
	name  string
}

func pairs(groups []types.CheckGroup) []pair {
	var out []pair
	for _, g := range groups {
		for _, n := range g.RunNames {
			out = append(out, pair{group: g.RunGroup, name: n})
		}
	}
	return out
}

func uniquePairs(groups []types.CheckGroup) []pair {
	seen := make(map[pair]bool)
	var out []pair
	for _, p := range pairs(groups) {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func latestWithStatus(records []types.RunRecord, status types.RunStatus) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, r := range records {
		if r.Status != status {
			continue
		}
		if !found || r.AsOf.After(latest) {
			latest = r.AsOf
		}
		found = true
	}
	return latest, found
}
