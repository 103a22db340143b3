package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dwsmith1983/feedwatch/internal/feed"
	"github.com/dwsmith1983/feedwatch/internal/metrics"
	"github.com/dwsmith1983/feedwatch/internal/provider"
	"github.com/dwsmith1983/feedwatch/internal/testutil"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

var (
	friday   = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	thursday = time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func simpleFeed() types.Descriptor {
	return types.Descriptor{
		Name:     "SIMPLE",
		Category: "Test Bonds",
		Checks: types.Checks{
			Error:      []types.CheckGroup{},
			Completion: []types.CheckGroup{{RunGroup: "G1", RunNames: []string{"N1"}}},
			InProgress: []types.CheckGroup{},
		},
		ETA:         "16:00",
		ExpectedETA: feed.DailyAt(16, 0, time.UTC),
	}
}

// stagedFeed has every collection populated.
func stagedFeed() types.Descriptor {
	return types.Descriptor{
		Name: "STAGED",
		Checks: types.Checks{
			Completion: []types.CheckGroup{{RunGroup: "LOAD", RunNames: []string{"PRICE_A", "PRICE_B"}}},
			InProgress: []types.CheckGroup{
				{RunGroup: "FTP", RunNames: []string{"DOWNLOAD"}},
				{RunGroup: "LOAD", RunNames: []string{"PRICE_A", "PRICE_B"}},
			},
			Pending: []types.CheckGroup{{RunGroup: "UPLOAD", RunNames: []string{"SEND"}}},
		},
		ETA:         "16:00",
		ExpectedETA: feed.DailyAt(16, 0, time.UTC),
	}
}

func newStore() *testutil.MockStore {
	store := testutil.NewMockStore()
	store.SetBusinessDays(friday, types.BusinessDays{
		Current:  friday,
		Previous: thursday,
		Next:     time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
	})
	return store
}

func newEngine(store *testutil.MockStore, now time.Time) *Engine {
	return New(store, store, WithClock(testutil.FixedClock(now)), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
}

func TestStatus_PricedWithCompletionTime(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "G1", "N1", types.RunComplete, at(friday, 14, 32))

	res := newEngine(store, at(friday, 15, 0)).Status(context.Background(), simpleFeed(), friday)
	assert.Equal(t, types.StatusPriced, res.Status)
	assert.Equal(t, at(friday, 14, 32), res.Timestamp)
	assert.Equal(t, "SIMPLE", res.Feed)
	assert.Equal(t, friday, res.BusinessDate)
	assert.Equal(t, types.FailureNone, res.Failure)
	assert.NoError(t, res.Err)
}

func TestStatus_DelayedAfterDeadline(t *testing.T) {
	store := newStore()
	now := at(friday, 17, 0)

	res := newEngine(store, now).Status(context.Background(), simpleFeed(), friday)
	assert.Equal(t, types.StatusDelayed, res.Status)
	assert.Equal(t, now, res.Timestamp)
}

func TestStatus_PricedTakesLatestCompletion(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunComplete, at(friday, 13, 0))
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunComplete, at(friday, 13, 40))
	store.AddRun(friday, "LOAD", "PRICE_B", types.RunComplete, at(friday, 13, 20))

	res := newEngine(store, at(friday, 17, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusPriced, res.Status)
	assert.Equal(t, at(friday, 13, 40), res.Timestamp)
}

func TestStatus_PricedNeedsEveryCompletionPair(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunComplete, at(friday, 13, 0))
	store.AddRun(friday, "LOAD", "PRICE_B", types.RunInProgress, at(friday, 13, 5))
	store.AddRun(friday, "UPLOAD", "SEND", types.RunComplete, at(friday, 9, 0))

	res := newEngine(store, at(friday, 12, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusInProgress, res.Status)
	assert.Equal(t, at(friday, 13, 5), res.Timestamp)
}

func TestStatus_ErrorPreemptsPriced(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunComplete, at(friday, 13, 0))
	store.AddRun(friday, "LOAD", "PRICE_B", types.RunComplete, at(friday, 13, 10))
	store.AddRun(friday, "FTP", "DOWNLOAD", types.RunError, at(friday, 11, 0))
	store.AddRun(friday, "UPLOAD", "SEND", types.RunError, at(friday, 11, 30))

	res := newEngine(store, at(friday, 17, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusError, res.Status)
	assert.Equal(t, at(friday, 11, 30), res.Timestamp, "latest error across every collection")
}

func TestStatus_ErrorScansPairsOnce(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunError, at(friday, 10, 0))

	res := newEngine(store, at(friday, 12, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusError, res.Status)
	// LOAD/PRICE_A, LOAD/PRICE_B, FTP/DOWNLOAD, UPLOAD/SEND
	assert.Equal(t, int64(4), store.QueryCount())
}

func TestStatus_DelayedPreemptsInProgress(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "FTP", "DOWNLOAD", types.RunInProgress, at(friday, 15, 0))
	now := at(friday, 16, 1)

	res := newEngine(store, now).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusDelayed, res.Status)
	assert.Equal(t, now, res.Timestamp)
}

func TestStatus_NotDelayedAtDeadline(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "FTP", "DOWNLOAD", types.RunInProgress, at(friday, 15, 0))

	res := newEngine(store, at(friday, 16, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusInProgress, res.Status)
}

func TestStatus_InProgressLatest(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "FTP", "DOWNLOAD", types.RunInProgress, at(friday, 10, 0))
	store.AddRun(friday, "LOAD", "PRICE_B", types.RunInProgress, at(friday, 10, 45))
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunComplete, at(friday, 10, 30))

	res := newEngine(store, at(friday, 11, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusInProgress, res.Status)
	assert.Equal(t, at(friday, 10, 45), res.Timestamp)
}

func TestStatus_PendingWhenUploadNotComplete(t *testing.T) {
	store := newStore()
	now := at(friday, 9, 0)

	res := newEngine(store, now).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusPending, res.Status)
	assert.Equal(t, now, res.Timestamp)
}

func TestStatus_PendingSatisfiedFallsBackToPreviousDay(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "UPLOAD", "SEND", types.RunComplete, at(friday, 8, 0))
	store.AddRun(thursday, "LOAD", "PRICE_A", types.RunComplete, at(thursday, 13, 0))
	store.AddRun(thursday, "LOAD", "PRICE_B", types.RunComplete, at(thursday, 13, 15))

	res := newEngine(store, at(friday, 9, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusPriced, res.Status)
	assert.Equal(t, at(thursday, 13, 15), res.Timestamp)
	assert.Equal(t, friday, res.BusinessDate)
}

func TestStatus_NilPendingFallsBackToPreviousDay(t *testing.T) {
	store := newStore()
	store.AddRun(thursday, "G1", "N1", types.RunComplete, at(thursday, 14, 0))

	res := newEngine(store, at(friday, 9, 0)).Status(context.Background(), simpleFeed(), friday)
	assert.Equal(t, types.StatusPriced, res.Status)
	assert.Equal(t, at(thursday, 14, 0), res.Timestamp)
}

func TestStatus_DefaultPending(t *testing.T) {
	store := newStore()
	now := at(friday, 9, 0)

	res := newEngine(store, now).Status(context.Background(), simpleFeed(), friday)
	assert.Equal(t, types.StatusPending, res.Status)
	assert.Equal(t, now, res.Timestamp)
}

func TestStatus_StoreFailure(t *testing.T) {
	store := newStore()
	store.FailQueries(errors.New("connection reset"))
	now := at(friday, 9, 0)

	res := newEngine(store, now).Status(context.Background(), simpleFeed(), friday)
	assert.Equal(t, types.StatusException, res.Status)
	assert.Equal(t, types.FailureStore, res.Failure)
	assert.Equal(t, now, res.Timestamp)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "connection reset")
}

func TestStatus_SinglePairFailure(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "LOAD", "PRICE_A", types.RunComplete, at(friday, 13, 0))
	store.FailRun("LOAD", "PRICE_B", errors.New("timeout"))

	res := newEngine(store, at(friday, 17, 0)).Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, types.StatusException, res.Status)
	assert.Equal(t, types.FailureStore, res.Failure)
}

func TestStatus_CalendarFailure(t *testing.T) {
	store := newStore()
	store.FailLookups(errors.New("calendar table missing"))

	res := newEngine(store, at(friday, 9, 0)).Status(context.Background(), simpleFeed(), friday)
	assert.Equal(t, types.StatusException, res.Status)
	assert.Equal(t, types.FailureStore, res.Failure)
	assert.Contains(t, res.Err.Error(), "business days")
}

func TestStatus_CancelledContext(t *testing.T) {
	store := newStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newEngine(store, at(friday, 9, 0)).Status(ctx, simpleFeed(), friday)
	assert.Equal(t, types.StatusException, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestStatus_OpenBreakerFailsFast(t *testing.T) {
	store := newStore()
	store.FailQueries(errors.New("connection refused"))
	src := provider.WithBreaker(store, provider.BreakerConfig{FailThreshold: 1, Cooldown: time.Minute})
	e := New(src, store, WithClock(testutil.FixedClock(at(friday, 9, 0))))
	ctx := context.Background()

	first := e.Status(ctx, simpleFeed(), friday)
	assert.Equal(t, types.StatusException, first.Status)

	before := store.QueryCount()
	second := e.Status(ctx, simpleFeed(), friday)
	assert.Equal(t, types.StatusException, second.Status)
	assert.Equal(t, types.FailureStore, second.Failure)
	assert.Equal(t, before, store.QueryCount())
}

func TestStatus_ConfigFailures(t *testing.T) {
	missing := simpleFeed()
	missing.Checks.Completion = nil

	noProgress := simpleFeed()
	noProgress.Checks.InProgress = nil

	malformed := simpleFeed()
	malformed.Checks.InProgress = []types.CheckGroup{{RunGroup: "", RunNames: []string{"N1"}}}

	noETA := simpleFeed()
	noETA.ExpectedETA = nil

	tests := []struct {
		name string
		desc types.Descriptor
		kind types.FailureKind
	}{
		{"missing completion", missing, types.FailureMissingConfig},
		{"missing in progress", noProgress, types.FailureMissingConfig},
		{"malformed collection", malformed, types.FailureMalformedConfig},
		{"no deadline", noETA, types.FailureMalformedConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			var logs bytes.Buffer
			e := New(store, store,
				WithClock(testutil.FixedClock(at(friday, 9, 0))),
				WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
			)

			res := e.Status(context.Background(), tt.desc, friday)
			assert.Equal(t, types.StatusException, res.Status)
			assert.Equal(t, tt.kind, res.Failure)
			assert.Zero(t, store.QueryCount())
			assert.Contains(t, logs.String(), "level=ERROR")
			assert.Contains(t, logs.String(), "feed=SIMPLE")
		})
	}
}

func TestStatus_LoadedFeedWithoutInProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: ICE
eta: "16:00"
checks:
  completion:
    - runGroup: G1
      runNames: [N1]
`), 0o644))
	reg := feed.NewRegistry(time.UTC)
	require.NoError(t, reg.LoadFile(path))
	desc, err := reg.Get("ICE")
	require.NoError(t, err)

	store := newStore()
	res := newEngine(store, at(friday, 9, 0)).Status(context.Background(), desc, friday)
	assert.Equal(t, types.StatusException, res.Status)
	assert.Equal(t, types.FailureMissingConfig, res.Failure)
	assert.ErrorIs(t, res.Err, feed.ErrMissingChecks)
	assert.Zero(t, store.QueryCount())
}

func TestStatus_Deterministic(t *testing.T) {
	store := newStore()
	store.AddRun(friday, "FTP", "DOWNLOAD", types.RunInProgress, at(friday, 10, 0))
	e := newEngine(store, at(friday, 11, 0))

	first := e.Status(context.Background(), stagedFeed(), friday)
	second := e.Status(context.Background(), stagedFeed(), friday)
	assert.Equal(t, first, second)
}

func TestStatus_Metrics(t *testing.T) {
	store := newStore()
	store.FailQueries(errors.New("down"))

	evaluations := metrics.StatusEvaluations.Value()
	exceptions := metrics.StatusExceptions.Value()

	newEngine(store, at(friday, 9, 0)).Status(context.Background(), simpleFeed(), friday)

	assert.Equal(t, evaluations+1, metrics.StatusEvaluations.Value())
	assert.Equal(t, exceptions+1, metrics.StatusExceptions.Value())
}

func TestStatus_Telemetry(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	store := newStore()
	store.FailQueries(errors.New("down"))
	newEngine(store, at(friday, 9, 0)).Status(context.Background(), simpleFeed(), friday)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "engine.Status", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("feed", "SIMPLE"))
	assert.Contains(t, span.Attributes(), attribute.String("businessDate", "2025-01-10"))
	assert.Contains(t, span.Attributes(), attribute.String("status", "EXCEPTION"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "feedwatch.status.evaluations" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), total)
}
