// Package sqlite provides a file-backed run-record and business-day source
// with the same tables as the Postgres monitoring database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dwsmith1983/feedwatch/internal/provider"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

var (
	_ provider.RunRecordSource   = (*Store)(nil)
	_ provider.BusinessDaySource = (*Store)(nil)
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS monitor (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    scenario    TEXT NOT NULL,
    data_dt     TEXT NOT NULL,
    run_group   TEXT NOT NULL,
    run_name    TEXT NOT NULL,
    run_type    TEXT NOT NULL,
    run_status  INTEGER NOT NULL,
    asofdate    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_monitor_lookup
    ON monitor (scenario, data_dt, run_group, run_name, run_type);

CREATE TABLE IF NOT EXISTS calendar (
    scenario   TEXT NOT NULL,
    data_dt    TEXT NOT NULL,
    curr_bday  TEXT NOT NULL,
    prev_bday  TEXT NOT NULL,
    next_bday  TEXT NOT NULL,
    PRIMARY KEY (scenario, data_dt)
);
`

// Dates are stored as YYYY-MM-DD text, timestamps as RFC 3339 text.
const (
	dateLayout = time.DateOnly
	tsLayout   = time.RFC3339Nano
)

// Store is a SQLite-backed source.
type Store struct {
	db *sql.DB
}

// Open opens the database at path. ":memory:" gives a private in-memory
// database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One connection: an in-memory database is per connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates the monitor and calendar tables when absent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database file is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// QueryRuns returns the monitor rows matching q, oldest first.
func (s *Store) QueryRuns(ctx context.Context, q types.RunQuery) ([]types.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario, data_dt, run_group, run_name, run_type, run_status, asofdate
		FROM monitor
		WHERE scenario = ? AND data_dt = ? AND run_group = ? AND run_name = ? AND run_type = ?
		ORDER BY asofdate
	`, q.Scenario, q.BusinessDate.Format(dateLayout), q.RunGroup, q.RunName, q.RunType)
	if err != nil {
		return nil, fmt.Errorf("query monitor: %w", err)
	}
	defer rows.Close()

	records := []types.RunRecord{}
	for rows.Next() {
		var (
			r            types.RunRecord
			status       int
			dataDt, asOf string
		)
		if err := rows.Scan(&r.Scenario, &dataDt, &r.RunGroup, &r.RunName, &r.RunType, &status, &asOf); err != nil {
			return nil, fmt.Errorf("scan monitor row: %w", err)
		}
		if r.BusinessDate, err = time.Parse(dateLayout, dataDt); err != nil {
			return nil, fmt.Errorf("monitor data_dt %q: %w", dataDt, err)
		}
		if r.AsOf, err = time.Parse(tsLayout, asOf); err != nil {
			return nil, fmt.Errorf("monitor asofdate %q: %w", asOf, err)
		}
		r.Status = types.RunStatus(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Lookup returns the calendar row for ref. A date without a row is an error.
func (s *Store) Lookup(ctx context.Context, ref time.Time) (types.BusinessDays, error) {
	var curr, prev, next string
	err := s.db.QueryRowContext(ctx, `
		SELECT curr_bday, prev_bday, next_bday
		FROM calendar
		WHERE scenario = ? AND data_dt = ?
	`, types.BaseScenario, ref.Format(dateLayout)).Scan(&curr, &prev, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return types.BusinessDays{}, fmt.Errorf("no calendar row for %s", ref.Format(dateLayout))
	}
	if err != nil {
		return types.BusinessDays{}, fmt.Errorf("query calendar: %w", err)
	}

	var days types.BusinessDays
	for _, f := range []struct {
		dst *time.Time
		src string
	}{{&days.Current, curr}, {&days.Previous, prev}, {&days.Next, next}} {
		if *f.dst, err = time.Parse(dateLayout, f.src); err != nil {
			return types.BusinessDays{}, fmt.Errorf("calendar date %q: %w", f.src, err)
		}
	}
	return days, nil
}

// InsertRun appends a monitor row.
func (s *Store) InsertRun(ctx context.Context, r types.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monitor (scenario, data_dt, run_group, run_name, run_type, run_status, asofdate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.Scenario, r.BusinessDate.Format(dateLayout), r.RunGroup, r.RunName, r.RunType,
		int(r.Status), r.AsOf.Format(tsLayout))
	if err != nil {
		return fmt.Errorf("insert monitor row: %w", err)
	}
	return nil
}

// PutBusinessDays upserts the calendar row for ref.
func (s *Store) PutBusinessDays(ctx context.Context, ref time.Time, days types.BusinessDays) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar (scenario, data_dt, curr_bday, prev_bday, next_bday)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (scenario, data_dt) DO UPDATE SET
			curr_bday = excluded.curr_bday,
			prev_bday = excluded.prev_bday,
			next_bday = excluded.next_bday
	`, types.BaseScenario, ref.Format(dateLayout), days.Current.Format(dateLayout),
		days.Previous.Format(dateLayout), days.Next.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("upsert calendar row: %w", err)
	}
	return nil
}
