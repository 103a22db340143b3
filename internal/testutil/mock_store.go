// Package testutil provides shared test utilities for feedwatch.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dwsmith1983/feedwatch/internal/provider"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// Compile-time interface satisfaction checks.
var (
	_ provider.RunRecordSource   = (*MockStore)(nil)
	_ provider.BusinessDaySource = (*MockStore)(nil)
)

// MockStore is an in-memory monitoring store and calendar table for testing.
type MockStore struct {
	mu       sync.Mutex
	runs     []types.RunRecord
	days     map[string]types.BusinessDays // key: "2006-01-02"
	failRuns map[string]error              // key: "group/name", "*" fails every query
	failDays error

	queryCount atomic.Int64
}

// NewMockStore creates a new empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		days:     make(map[string]types.BusinessDays),
		failRuns: make(map[string]error),
	}
}

// AddRun records a run in the BASE scenario with run type RUN.
func (m *MockStore) AddRun(date time.Time, group, name string, status types.RunStatus, asOf time.Time) {
	m.Put(types.RunRecord{
		Scenario:     types.BaseScenario,
		BusinessDate: date,
		RunGroup:     group,
		RunName:      name,
		RunType:      types.RunTypeRun,
		Status:       status,
		AsOf:         asOf,
	})
}

// Put stores an arbitrary record.
func (m *MockStore) Put(rec types.RunRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, rec)
}

// SetBusinessDays defines the calendar row for ref.
func (m *MockStore) SetBusinessDays(ref time.Time, days types.BusinessDays) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[ref.Format(time.DateOnly)] = days
}

// FailQueries makes every run query fail with err. A nil err clears it.
func (m *MockStore) FailQueries(err error) {
	m.FailRun("*", "", err)
}

// FailRun makes queries for one group/name pair fail with err.
func (m *MockStore) FailRun(group, name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := failKey(group, name)
	if err == nil {
		delete(m.failRuns, key)
		return
	}
	m.failRuns[key] = err
}

// FailLookups makes every calendar lookup fail with err.
func (m *MockStore) FailLookups(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDays = err
}

// QueryCount returns the number of run queries served, including failures.
func (m *MockStore) QueryCount() int64 {
	return m.queryCount.Load()
}

// QueryRuns implements provider.RunRecordSource.
func (m *MockStore) QueryRuns(ctx context.Context, q types.RunQuery) ([]types.RunRecord, error) {
	m.queryCount.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failRuns[failKey("*", "")]; ok {
		return nil, err
	}
	if err, ok := m.failRuns[failKey(q.RunGroup, q.RunName)]; ok {
		return nil, err
	}

	result := []types.RunRecord{}
	for _, r := range m.runs {
		if r.Scenario != q.Scenario || r.RunType != q.RunType {
			continue
		}
		if r.RunGroup != q.RunGroup || r.RunName != q.RunName {
			continue
		}
		if !sameDay(r.BusinessDate, q.BusinessDate) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// Lookup implements provider.BusinessDaySource.
func (m *MockStore) Lookup(ctx context.Context, ref time.Time) (types.BusinessDays, error) {
	if err := ctx.Err(); err != nil {
		return types.BusinessDays{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDays != nil {
		return types.BusinessDays{}, m.failDays
	}
	days, ok := m.days[ref.Format(time.DateOnly)]
	if !ok {
		return types.BusinessDays{}, fmt.Errorf("no calendar row for %s", ref.Format(time.DateOnly))
	}
	return days, nil
}

func failKey(group, name string) string {
	return group + "/" + name
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
