package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// InsertRun appends a monitor row.
func (s *Store) InsertRun(ctx context.Context, r types.RunRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO monitor (scenario, data_dt, run_group, run_name, run_type, run_status, asofdate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.Scenario, dateOnly(r.BusinessDate), r.RunGroup, r.RunName, r.RunType, int(r.Status), r.AsOf)
	if err != nil {
		return fmt.Errorf("insert monitor row: %w", err)
	}
	return nil
}

// PutBusinessDays upserts the calendar row for ref.
func (s *Store) PutBusinessDays(ctx context.Context, ref time.Time, days types.BusinessDays) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO calendar (scenario, data_dt, curr_bday, prev_bday, next_bday)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (scenario, data_dt) DO UPDATE SET
			curr_bday = EXCLUDED.curr_bday,
			prev_bday = EXCLUDED.prev_bday,
			next_bday = EXCLUDED.next_bday
	`, types.BaseScenario, dateOnly(ref), dateOnly(days.Current), dateOnly(days.Previous), dateOnly(days.Next))
	if err != nil {
		return fmt.Errorf("upsert calendar row: %w", err)
	}
	return nil
}
