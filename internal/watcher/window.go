package watcher

import (
	"fmt"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/schedule"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// alertWindow limits alerting to weekdays strictly between start and end.
// Bounds are HH:MM or a duration after midnight, resolved on the day being
// checked.
type alertWindow struct {
	start, end string
}

func parseAlertWindow(cfg types.AlertWindow) (*alertWindow, error) {
	ref := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	start, err := schedule.ParseSLADeadline(cfg.Start, "", ref)
	if err != nil {
		return nil, fmt.Errorf("alert window start: %w", err)
	}
	end, err := schedule.ParseSLADeadline(cfg.End, "", ref)
	if err != nil {
		return nil, fmt.Errorf("alert window end: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("alert window end %s is not after start %s", cfg.End, cfg.Start)
	}
	return &alertWindow{start: cfg.Start, end: cfg.End}, nil
}

// contains reports whether alerts may be sent at now. A nil window always
// allows alerts.
func (w *alertWindow) contains(now time.Time) bool {
	if w == nil {
		return true
	}
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	start, err := schedule.ParseSLADeadline(w.start, "", now)
	if err != nil {
		return false
	}
	end, err := schedule.ParseSLADeadline(w.end, "", now)
	if err != nil {
		return false
	}
	return now.After(start) && now.Before(end)
}
