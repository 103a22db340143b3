package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// MockCache is an in-memory status report cache.
type MockCache struct {
	mu      sync.Mutex
	reports map[string]types.FeedReport
	ttls    map[string]time.Duration
	failErr error
}

// NewMockCache creates an empty cache.
func NewMockCache() *MockCache {
	return &MockCache{
		reports: make(map[string]types.FeedReport),
		ttls:    make(map[string]time.Duration),
	}
}

func cacheKey(feed string, date time.Time) string {
	return feed + ":" + date.Format("20060102")
}

// Fail makes every Get and Put return err. A nil err clears it.
func (m *MockCache) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Get returns the stored report for feed on date.
func (m *MockCache) Get(_ context.Context, feed string, date time.Time) (*types.FeedReport, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, false, m.failErr
	}
	r, ok := m.reports[cacheKey(feed, date)]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

// Put stores report.
func (m *MockCache) Put(_ context.Context, report types.FeedReport, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	key := cacheKey(report.Feed, report.Date)
	m.reports[key] = report
	m.ttls[key] = ttl
	return nil
}

// Len returns the number of stored reports.
func (m *MockCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// TTL returns the TTL a report was stored with.
func (m *MockCache) TTL(feed string, date time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[cacheKey(feed, date)]
}
