package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/provider"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// Calendar answers business-day questions by delegating to an external
// business-day source.
type Calendar struct {
	source provider.BusinessDaySource
}

// New creates a Calendar backed by source.
func New(source provider.BusinessDaySource) *Calendar {
	return &Calendar{source: source}
}

// CurrentBusinessDay returns the business day equal to or immediately
// preceding ref.
func (c *Calendar) CurrentBusinessDay(ctx context.Context, ref time.Time) (time.Time, error) {
	days, err := c.lookup(ctx, ref)
	if err != nil {
		return time.Time{}, err
	}
	return days.Current, nil
}

// PreviousBusinessDay returns the business day immediately preceding ref.
func (c *Calendar) PreviousBusinessDay(ctx context.Context, ref time.Time) (time.Time, error) {
	days, err := c.lookup(ctx, ref)
	if err != nil {
		return time.Time{}, err
	}
	return days.Previous, nil
}

// NextBusinessDay returns the business day immediately following ref.
func (c *Calendar) NextBusinessDay(ctx context.Context, ref time.Time) (time.Time, error) {
	days, err := c.lookup(ctx, ref)
	if err != nil {
		return time.Time{}, err
	}
	return days.Next, nil
}

func (c *Calendar) lookup(ctx context.Context, ref time.Time) (types.BusinessDays, error) {
	days, err := c.source.Lookup(ctx, DateOf(ref))
	if err != nil {
		return types.BusinessDays{}, fmt.Errorf("business days for %s: %w", ref.Format(time.DateOnly), err)
	}
	return days, nil
}
