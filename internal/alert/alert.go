// Package alert implements alert dispatching to multiple sinks.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dwsmith1983/feedwatch/internal/metrics"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// sendTimeout bounds a single sink delivery.
const sendTimeout = 10 * time.Second

// Sink is an alert destination.
type Sink interface {
	Send(ctx context.Context, alert types.Alert) error
	Name() string
}

// Dispatcher routes alerts to configured sinks.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher from alert configs.
func NewDispatcher(configs []types.AlertConfig, logger *slog.Logger) (*Dispatcher, error) {
	d := &Dispatcher{logger: logger}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// NewDispatcherWithSinks creates a dispatcher over already-built sinks.
func NewDispatcherWithSinks(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Dispatch stamps the alert with an ID and timestamp if missing and sends it
// to every sink. A failing sink does not stop delivery to the others.
func (d *Dispatcher) Dispatch(ctx context.Context, alert types.Alert) {
	if alert.AlertID == "" {
		alert.AlertID = ulid.Make().String()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	for _, sink := range d.sinks {
		sctx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := sink.Send(sctx, alert)
		cancel()
		if err != nil {
			metrics.AlertsFailed.Add(1)
			d.logger.Error("alert delivery failed", "sink", sink.Name(), "alertId", alert.AlertID, "feed", alert.Feed, "error", err)
			continue
		}
		metrics.AlertsDispatched.Add(1)
	}
}

// Sinks returns the names of the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}

func newSink(cfg types.AlertConfig) (Sink, error) {
	switch cfg.Type {
	case types.AlertConsole:
		return NewConsoleSink(), nil
	case types.AlertWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case types.AlertFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path required")
		}
		return NewFileSink(cfg.Path)
	case types.AlertEventBridge:
		return NewEventBridgeSink(cfg.EventBus)
	case types.AlertSQS:
		return NewSQSSink(cfg.QueueURL)
	default:
		return nil, fmt.Errorf("unknown alert type %q", cfg.Type)
	}
}
