// Package schedule parses time-of-day deadlines and checks them against a clock.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var timeOfDayRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimeOfDay parses "HH:MM" into hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	m := timeOfDayRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: must be HH:MM", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return hour, minute, nil
}

// ParseSLADeadline resolves a deadline on the calendar day of ref.
// Supports "HH:MM" (wall-clock time of day, so DST transitions do not shift
// it) or Go duration strings like "2h", "30m" meaning that long after midnight.
func ParseSLADeadline(deadline, timezone string, ref time.Time) (time.Time, error) {
	if deadline == "" {
		return time.Time{}, fmt.Errorf("empty deadline")
	}

	loc := ref.Location()
	if timezone != "" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}
	refInTZ := ref.In(loc)
	midnight := time.Date(refInTZ.Year(), refInTZ.Month(), refInTZ.Day(), 0, 0, 0, 0, loc)

	if timeOfDayRegex.MatchString(deadline) {
		hour, minute, err := ParseTimeOfDay(deadline)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(refInTZ.Year(), refInTZ.Month(), refInTZ.Day(), hour, minute, 0, 0, loc), nil
	}

	d, err := time.ParseDuration(deadline)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline format %q: must be HH:MM or duration", deadline)
	}
	return midnight.Add(d), nil
}

// IsBreached checks if the current time has passed the deadline.
func IsBreached(deadline, now time.Time) bool {
	return now.After(deadline)
}
