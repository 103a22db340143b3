package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/metrics"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// Poll runs one evaluation cycle for the current business day.
func (w *Watcher) Poll(ctx context.Context) {
	metrics.WatcherPolls.Add(1)
	now := w.now()

	date, err := w.days.CurrentBusinessDay(ctx, now)
	if err != nil {
		w.logger.Error("resolving business day", "error", err)
		return
	}

	reports, err := w.source.FeedStatuses(ctx, w.feeds, date)
	if err != nil {
		w.logger.Error("evaluating feeds", "date", date.Format(time.DateOnly), "error", err)
		return
	}

	w.mu.Lock()
	if !w.date.Equal(date) {
		w.date = date
		w.last = make(map[string]types.FeedStatus)
	}
	var alerts []types.Alert
	for _, r := range reports {
		if a, ok := w.transition(r, now); ok {
			alerts = append(alerts, a)
		}
	}
	w.mu.Unlock()

	for _, a := range alerts {
		if w.alertFn != nil {
			w.alertFn(ctx, a)
		}
	}
}

// transition records r and returns the alert it warrants, if any. An
// alarming status seen outside the alert window is not recorded, so it is
// reported once the window opens.
func (w *Watcher) transition(r types.FeedReport, now time.Time) (types.Alert, bool) {
	prev, seen := w.last[r.Feed]
	if seen && prev == r.Status {
		return types.Alert{}, false
	}

	level, alarming := alertLevel(r.Status)
	recovered := seen && r.Status == types.StatusPriced && isAlarming(prev)
	if !alarming && !recovered {
		w.last[r.Feed] = r.Status
		return types.Alert{}, false
	}

	if !w.window.contains(now) {
		if recovered {
			w.last[r.Feed] = r.Status
		}
		w.logger.Info("alert suppressed outside alert window", "feed", r.Feed, "status", r.Status)
		return types.Alert{}, false
	}
	w.last[r.Feed] = r.Status

	if r.Status == types.StatusDelayed {
		metrics.DelayedFeeds.Add(1)
	}
	if recovered {
		level = types.AlertLevelInfo
	}
	return types.Alert{
		Level:        level,
		Feed:         r.Feed,
		BusinessDate: r.Date.Format(time.DateOnly),
		Status:       r.Status,
		Message:      alertMessage(r, prev),
		Timestamp:    now,
	}, true
}

func alertLevel(s types.FeedStatus) (types.AlertLevel, bool) {
	switch s {
	case types.StatusError, types.StatusException:
		return types.AlertLevelError, true
	case types.StatusDelayed:
		return types.AlertLevelWarning, true
	default:
		return "", false
	}
}

func isAlarming(s types.FeedStatus) bool {
	_, ok := alertLevel(s)
	return ok
}

func alertMessage(r types.FeedReport, prev types.FeedStatus) string {
	date := r.Date.Format(time.DateOnly)
	switch r.Status {
	case types.StatusDelayed:
		return fmt.Sprintf("%s is DELAYED for %s (normal ETA %s)", r.Feed, date, r.NormalETA.Format("15:04"))
	case types.StatusError:
		return fmt.Sprintf("%s reported ERROR for %s at %s", r.Feed, date, r.AsOf.Format("15:04:05"))
	case types.StatusException:
		return fmt.Sprintf("%s status could not be determined for %s (%s)", r.Feed, date, r.Failure)
	default:
		return fmt.Sprintf("%s is %s for %s after %s", r.Feed, r.Status, date, prev)
	}
}
