// Package calendar provides business-day arithmetic: nearest period-end
// dates, business-day lookups against an external calendar source, and
// holiday calendars loaded from YAML.
package calendar

import (
	"time"
)

// DisplayLayout renders timestamps with millisecond precision.
const DisplayLayout = "2006-01-02 15:04:05.000"

// Date returns midnight UTC on the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsLeap reports whether year is a leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// NearestMonthEnd returns the latest month-end date on or before ref.
func NearestMonthEnd(ref time.Time) time.Time {
	ref = DateOf(ref)
	y, loc := ref.Year(), ref.Location()

	candidates := []time.Time{time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc)}
	for m := time.January; m <= time.December; m++ {
		candidates = append(candidates, monthEnd(y, m, loc))
	}
	return nearestPast(ref, candidates)
}

// NearestQuarterEnd returns the latest quarter-end date on or before ref.
func NearestQuarterEnd(ref time.Time) time.Time {
	ref = DateOf(ref)
	y, loc := ref.Year(), ref.Location()

	return nearestPast(ref, []time.Time{
		time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc),
		time.Date(y, time.March, 31, 0, 0, 0, 0, loc),
		time.Date(y, time.June, 30, 0, 0, 0, 0, loc),
		time.Date(y, time.September, 30, 0, 0, 0, 0, loc),
		time.Date(y, time.December, 31, 0, 0, 0, 0, loc),
	})
}

// NearestYearEnd returns the latest year-end date on or before ref.
func NearestYearEnd(ref time.Time) time.Time {
	ref = DateOf(ref)
	y, loc := ref.Year(), ref.Location()

	return nearestPast(ref, []time.Time{
		time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc),
		time.Date(y, time.December, 31, 0, 0, 0, 0, loc),
	})
}

// FormatTimeMillis renders t truncated to millisecond precision.
func FormatTimeMillis(t time.Time) string {
	return t.Format(DisplayLayout)
}

// monthEnd relies on time.Date normalising day 0 to the last day of the
// previous month, which accounts for February 29 in leap years.
func monthEnd(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

// nearestPast picks the candidate minimising ref - candidate among those not
// after ref. The prior-year December 31 is always a candidate, so the
// result is never zero for the callers above.
func nearestPast(ref time.Time, candidates []time.Time) time.Time {
	var (
		result time.Time
		best   time.Duration = -1
	)
	for _, c := range candidates {
		delta := ref.Sub(c)
		if delta < 0 {
			continue
		}
		if best < 0 || delta < best {
			best = delta
			result = c
		}
	}
	return result
}
