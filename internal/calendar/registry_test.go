package calendar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ca-business.yaml"), []byte(`
name: ca-business
days: ["saturday", "sunday"]
dates:
  - "2025-12-25"
  - "2025-07-01"
`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "us-business.yml"), []byte(`
name: us-business
days: ["saturday", "sunday"]
dates:
  - "2025-07-04"
`), 0o644))

	// Non-YAML files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	reg := NewRegistry()
	require.NoError(t, reg.LoadDir(dir))

	ca := reg.Get("ca-business")
	require.NotNil(t, ca)
	assert.Equal(t, []string{"saturday", "sunday"}, ca.Days)
	assert.Contains(t, ca.Dates, "2025-07-01")

	us := reg.Get("us-business")
	require.NotNil(t, us)
	assert.Contains(t, us.Dates, "2025-07-04")

	assert.Equal(t, []string{"ca-business", "us-business"}, reg.Names())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, reg.Get("nonexistent"))
}

func TestRegistry_LoadFile_NoName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`days: ["saturday"]`), 0o644))

	reg := NewRegistry()
	err := reg.LoadFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no name")
}

func TestRegistry_LoadFile_RejectsInvalidCalendars(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown weekday", "name: bad\ndays: [funday]\n", "funday"},
		{"malformed date", "name: bad\ndates: [\"2025-13-01\"]\n", "2025-13-01"},
		{"unknown key", "name: bad\nholidays: [\"2025-12-25\"]\n", "holidays"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			reg := NewRegistry()
			err := reg.LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, reg.Names())
		})
	}
}

func TestRegistry_Register_Replaces(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(weekendCalendar()))

	src, err := reg.Source("test-business")
	require.NoError(t, err)
	assert.False(t, src.IsBusinessDay(Date(2025, 12, 25)))

	require.NoError(t, reg.Register(&types.HolidayCalendar{Name: "test-business", Days: []string{"sunday"}}))
	src, err = reg.Source("test-business")
	require.NoError(t, err)
	assert.True(t, src.IsBusinessDay(Date(2025, 12, 25)))
	assert.Equal(t, []string{"test-business"}, reg.Names())
}

func TestRegistry_LoadDir_MissingDir(t *testing.T) {
	reg := NewRegistry()
	err := reg.LoadDir("/nonexistent/path")
	assert.Error(t, err)
}

func TestRegistry_Source(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(weekendCalendar()))

	src, err := reg.Source("test-business")
	require.NoError(t, err)
	assert.True(t, src.IsBusinessDay(Date(2025, 1, 6)))

	_, err = reg.Source("missing")
	assert.Error(t, err)
}
