package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// HolidaySource computes business days from a holiday calendar instead of
// reading a calendar table.
type HolidaySource struct {
	name     string
	business *cal.BusinessCalendar
	openDays int
}

// NewHolidaySource validates hc and builds a business calendar from it.
// Days name weekdays that are never business days; Dates are one-off
// holidays in YYYY-MM-DD form.
func NewHolidaySource(hc *types.HolidayCalendar) (*HolidaySource, error) {
	closed := make(map[time.Weekday]bool, len(hc.Days))
	for _, d := range hc.Days {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return nil, fmt.Errorf("calendar %s: unknown weekday %q", hc.Name, d)
		}
		closed[wd] = true
	}

	business := cal.NewBusinessCalendar()
	business.WorkdayFunc = func(day time.Time) bool {
		return !closed[day.Weekday()]
	}
	for _, d := range hc.Dates {
		day, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, fmt.Errorf("calendar %s: invalid date %q: %w", hc.Name, d, err)
		}
		business.AddHoliday(&cal.Holiday{
			Name:      hc.Name + " " + d,
			Month:     day.Month(),
			Day:       day.Day(),
			StartYear: day.Year(),
			EndYear:   day.Year(),
			Func:      cal.CalcDayOfMonth,
		})
	}

	return &HolidaySource{
		name:     hc.Name,
		business: business,
		openDays: 7 - len(closed),
	}, nil
}

// IsBusinessDay reports whether day is neither an excluded weekday nor a holiday.
func (s *HolidaySource) IsBusinessDay(day time.Time) bool {
	return s.business.IsWorkday(day)
}

// Lookup implements provider.BusinessDaySource. Current is ref itself when
// it is a business day, otherwise the one before it.
func (s *HolidaySource) Lookup(ctx context.Context, ref time.Time) (types.BusinessDays, error) {
	if err := ctx.Err(); err != nil {
		return types.BusinessDays{}, err
	}
	ref = DateOf(ref)

	// Holidays are finite, so a calendar with any open weekday always
	// reaches a workday.
	if s.openDays == 0 {
		return types.BusinessDays{}, fmt.Errorf("calendar %s: no business day around %s",
			s.name, ref.Format(time.DateOnly))
	}

	prev := s.business.WorkdaysFrom(ref, -1)
	current := ref
	if !s.business.IsWorkday(ref) {
		current = prev
	}
	return types.BusinessDays{
		Current:  current,
		Previous: prev,
		Next:     s.business.WorkdaysFrom(ref, 1),
	}, nil
}
