package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// QueryRuns returns the monitor rows matching q, oldest first.
func (s *Store) QueryRuns(ctx context.Context, q types.RunQuery) ([]types.RunRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT scenario, data_dt, run_group, run_name, run_type, run_status, asofdate
		FROM monitor
		WHERE scenario = $1 AND data_dt = $2 AND run_group = $3
			AND run_name = $4 AND run_type = $5
		ORDER BY asofdate
	`, q.Scenario, dateOnly(q.BusinessDate), q.RunGroup, q.RunName, q.RunType)
	if err != nil {
		return nil, fmt.Errorf("query monitor: %w", err)
	}
	defer rows.Close()

	records := []types.RunRecord{}
	for rows.Next() {
		var (
			r      types.RunRecord
			status int
		)
		if err := rows.Scan(&r.Scenario, &r.BusinessDate, &r.RunGroup, &r.RunName,
			&r.RunType, &status, &r.AsOf); err != nil {
			return nil, fmt.Errorf("scan monitor row: %w", err)
		}
		r.Status = types.RunStatus(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Lookup returns the calendar row for ref. A date without a row is an error.
func (s *Store) Lookup(ctx context.Context, ref time.Time) (types.BusinessDays, error) {
	var days types.BusinessDays
	err := s.pool.QueryRow(ctx, `
		SELECT curr_bday, prev_bday, next_bday
		FROM calendar
		WHERE scenario = $1 AND data_dt = $2
	`, types.BaseScenario, dateOnly(ref)).Scan(&days.Current, &days.Previous, &days.Next)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.BusinessDays{}, fmt.Errorf("no calendar row for %s", ref.Format(time.DateOnly))
	}
	if err != nil {
		return types.BusinessDays{}, fmt.Errorf("query calendar: %w", err)
	}
	return days, nil
}

// dateOnly drops the time of day so DATE parameters compare by calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
