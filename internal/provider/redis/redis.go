// Package redis caches finalized feed status reports in Redis/Valkey.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

const defaultPrefix = "feedwatch:"

// StatusCache stores feed reports as JSON values keyed by feed and date.
type StatusCache struct {
	client *goredis.Client
	prefix string
}

// New creates a StatusCache from connection settings.
func New(cfg *types.RedisConfig) *StatusCache {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewFromClient(client, cfg.KeyPrefix)
}

// NewFromClient creates a StatusCache from an existing client.
func NewFromClient(client *goredis.Client, prefix string) *StatusCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &StatusCache{client: client, prefix: prefix}
}

// Ping checks the connection.
func (c *StatusCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *StatusCache) Close() error {
	return c.client.Close()
}

func (c *StatusCache) statusKey(feed string, date time.Time) string {
	return c.prefix + "status:" + feed + ":" + date.Format("20060102")
}

// Get returns the cached report for feed on date. A miss is (nil, false, nil).
func (c *StatusCache) Get(ctx context.Context, feed string, date time.Time) (*types.FeedReport, bool, error) {
	data, err := c.client.Get(ctx, c.statusKey(feed, date)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached status: %w", err)
	}

	var report types.FeedReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("decoding cached status: %w", err)
	}
	return &report, true, nil
}

// Put stores report with the given TTL. A zero TTL keeps the key forever.
func (c *StatusCache) Put(ctx context.Context, report types.FeedReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	if err := c.client.Set(ctx, c.statusKey(report.Feed, report.Date), data, ttl).Err(); err != nil {
		return fmt.Errorf("writing cached status: %w", err)
	}
	return nil
}
