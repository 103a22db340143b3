package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { store.Close() })
	return store
}

func run(date time.Time, group, name string, status types.RunStatus, asOf time.Time) types.RunRecord {
	return types.RunRecord{
		Scenario:     types.BaseScenario,
		BusinessDate: date,
		RunGroup:     group,
		RunName:      name,
		RunType:      types.RunTypeRun,
		Status:       status,
		AsOf:         asOf,
	}
}

func TestQueryRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertRun(ctx, run(date, "APX-PRICELOAD", "BOND_BB", types.RunInProgress, date.Add(14*time.Hour))))
	require.NoError(t, store.InsertRun(ctx, run(date, "APX-PRICELOAD", "BOND_BB", types.RunComplete, date.Add(14*time.Hour+32*time.Minute))))
	require.NoError(t, store.InsertRun(ctx, run(date, "APX-PRICELOAD", "BOND_FTSETMX", types.RunComplete, date.Add(14*time.Hour))))
	require.NoError(t, store.InsertRun(ctx, run(date.AddDate(0, 0, -1), "APX-PRICELOAD", "BOND_BB", types.RunError, date.Add(-time.Hour))))

	records, err := store.QueryRuns(ctx, types.RunQuery{
		Scenario:     types.BaseScenario,
		BusinessDate: date,
		RunGroup:     "APX-PRICELOAD",
		RunName:      "BOND_BB",
		RunType:      types.RunTypeRun,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, types.RunInProgress, records[0].Status)
	assert.Equal(t, types.RunComplete, records[1].Status)
	assert.True(t, records[1].AsOf.Equal(date.Add(14*time.Hour+32*time.Minute)))
	assert.True(t, records[1].BusinessDate.Equal(date))
}

func TestQueryRuns_Empty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.QueryRuns(context.Background(), types.RunQuery{
		Scenario:     types.BaseScenario,
		BusinessDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		RunGroup:     "G1",
		RunName:      "N1",
		RunType:      types.RunTypeRun,
	})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestQueryRuns_OtherScenarioIgnored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	rec := run(date, "G1", "N1", types.RunComplete, date.Add(10*time.Hour))
	rec.Scenario = "STRESS"
	require.NoError(t, store.InsertRun(ctx, rec))

	records, err := store.QueryRuns(ctx, types.RunQuery{
		Scenario: types.BaseScenario, BusinessDate: date, RunGroup: "G1", RunName: "N1", RunType: types.RunTypeRun,
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	want := types.BusinessDays{
		Current:  monday,
		Previous: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Next:     time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.PutBusinessDays(ctx, monday, want))

	got, err := store.Lookup(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Upsert replaces the row.
	want.Next = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutBusinessDays(ctx, monday, want))
	got, err = store.Lookup(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, want.Next, got.Next)
}

func TestLookup_MissingRow(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Lookup(context.Background(), time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no calendar row for 2025-01-13")
}

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "monitor.db")
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	store, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.InsertRun(ctx, run(date, "G1", "N1", types.RunComplete, date.Add(time.Hour))))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.QueryRuns(ctx, types.RunQuery{
		Scenario: types.BaseScenario, BusinessDate: date, RunGroup: "G1", RunName: "N1", RunType: types.RunTypeRun,
	})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
