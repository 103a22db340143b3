// Package provider defines the external data sources feedwatch reads: the
// monitoring store's run records and the business-day calendar.
package provider

import (
	"context"
	"time"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// RunRecordSource queries the monitoring store. Implementations return an
// empty slice, not an error, when no record matches.
type RunRecordSource interface {
	QueryRuns(ctx context.Context, q types.RunQuery) ([]types.RunRecord, error)
}

// BusinessDaySource resolves the current, previous and next business day
// for a reference date.
type BusinessDaySource interface {
	Lookup(ctx context.Context, ref time.Time) (types.BusinessDays, error)
}
