package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/feedwatch/internal/config"
	"github.com/dwsmith1983/feedwatch/internal/provider/sqlite"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

var friday = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&types.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "feed", "FTSE")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"feed":"FTSE"`)

	buf.Reset()
	logger, err = newLogger(nil, &buf)
	require.NoError(t, err)
	logger.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")

	_, err = newLogger(&types.LoggingConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
	_, err = newLogger(&types.LoggingConfig{Format: "xml"}, &buf)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("20250110")
	require.NoError(t, err)
	assert.Equal(t, friday, d)

	_, err = parseDate("2025-01-10")
	assert.Error(t, err)
}

func TestBreakerConfig(t *testing.T) {
	got := breakerConfig(&types.BreakerConfig{FailThreshold: 3, Cooldown: "5s"}, nil)
	assert.Equal(t, uint32(3), got.FailThreshold)
	assert.Equal(t, 5*time.Second, got.Cooldown)

	got = breakerConfig(nil, nil)
	assert.Zero(t, got.FailThreshold)
	assert.Zero(t, got.Cooldown)
}

func writeCalendar(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsx.yaml"), []byte(`name: tsx
days: [saturday, sunday]
dates: ["2025-01-13"]
`), 0o644))
	return dir
}

func TestOpenSources_MemoryWithHolidayCalendar(t *testing.T) {
	cfg := &types.ProjectConfig{
		Provider: config.ProviderMemory,
		Calendar: &types.CalendarConfig{Name: "tsx", Dirs: []string{writeCalendar(t)}},
	}
	src, err := openSources(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer src.close()

	require.NoError(t, src.pinger.Ping(context.Background()))

	days, err := src.days.Lookup(context.Background(), friday)
	require.NoError(t, err)
	assert.Equal(t, friday, days.Current)
	assert.Equal(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), days.Next, "monday is a holiday")

	records, err := src.records.QueryRuns(context.Background(), types.RunQuery{
		Scenario: types.BaseScenario, BusinessDate: friday, RunGroup: "APX-PRICELOAD", RunName: "BOND_BB", RunType: types.RunTypeRun,
	})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpenSources_Unsupported(t *testing.T) {
	_, err := openSources(context.Background(), &types.ProjectConfig{Provider: "etcd"}, nil)
	assert.Error(t, err)
}

// seedStore writes a SQLite store with FTSE priced on friday and returns
// a config dir pointing at it.
func seedStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "monitor.db")

	ctx := context.Background()
	store, err := sqlite.Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.InsertRun(ctx, types.RunRecord{
		Scenario:     types.BaseScenario,
		BusinessDate: friday,
		RunGroup:     "APX-PRICELOAD",
		RunName:      "BOND_FTSETMX",
		RunType:      types.RunTypeRun,
		Status:       types.RunComplete,
		AsOf:         friday.Add(14*time.Hour + 32*time.Minute),
	}))
	require.NoError(t, store.Close())

	content := "provider: sqlite\nsqlite:\n  path: " + dbPath + "\ntimezone: UTC\nfeeds: [FTSE]\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))
	return dir
}

func TestRunStatus(t *testing.T) {
	dir := seedStore(t)

	var out bytes.Buffer
	require.NoError(t, runStatus(context.Background(), &out, dir, "20250110", nil))
	assert.Contains(t, out.String(), "2025-01-10")
	assert.Contains(t, out.String(), "FTSE")
	assert.Contains(t, out.String(), "PRICED")
	assert.Contains(t, out.String(), "14:32:00.000")
	assert.NotContains(t, out.String(), "BLOOMBERG")
}

func TestRunStatus_Errors(t *testing.T) {
	dir := seedStore(t)

	var out bytes.Buffer
	assert.Error(t, runStatus(context.Background(), &out, dir, "2025-01-10", nil))
	assert.Error(t, runStatus(context.Background(), &out, dir, "20250110", []string{"REUTERS"}))
	assert.Error(t, runStatus(context.Background(), &out, t.TempDir(), "20250110", nil))
}

func TestRunFeeds_Builtin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runFeeds(&out, t.TempDir()))
	for _, name := range []string{"FTSE", "MARKIT", "MARKIT_LOAN", "FUNDRUN", "FUNDRUN_LATAM", "BLOOMBERG"} {
		assert.Contains(t, out.String(), name)
	}
	assert.Contains(t, out.String(), "BOND_FTSETMX")
}

func TestRunCalendar(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runCalendar(context.Background(), &out, t.TempDir(), "2025-05-15"))
	assert.Contains(t, out.String(), "nearest month end      2025-04-30")
	assert.Contains(t, out.String(), "nearest quarter end    2025-03-31")
	assert.Contains(t, out.String(), "nearest year end       2024-12-31")
	assert.NotContains(t, out.String(), "business day")

	assert.Error(t, runCalendar(context.Background(), &out, t.TempDir(), "15/05/2025"))
}

func TestRunCalendar_BusinessDays(t *testing.T) {
	dir := t.TempDir()
	content := "provider: memory\ncalendar:\n  name: tsx\n  dirs: [" + writeCalendar(t) + "]\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))

	var out bytes.Buffer
	require.NoError(t, runCalendar(context.Background(), &out, dir, "2025-01-11"))
	assert.Contains(t, out.String(), "current business day   2025-01-10")
	assert.Contains(t, out.String(), "previous business day  2025-01-10")
	assert.Contains(t, out.String(), "next business day      2025-01-14")
}
