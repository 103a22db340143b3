package feed

import (
	"fmt"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/schedule"
)

// DailyAt returns an ETA function placing the deadline at hour:minute in loc
// on the business date's calendar day.
func DailyAt(hour, minute int, loc *time.Location) func(time.Time) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return func(businessDate time.Time) time.Time {
		y, m, d := businessDate.Date()
		return time.Date(y, m, d, hour, minute, 0, 0, loc)
	}
}

// ParseETA builds an ETA function from "HH:MM".
func ParseETA(eta string, loc *time.Location) (func(time.Time) time.Time, error) {
	hour, minute, err := schedule.ParseTimeOfDay(eta)
	if err != nil {
		return nil, fmt.Errorf("parsing eta: %w", err)
	}
	return DailyAt(hour, minute, loc), nil
}
