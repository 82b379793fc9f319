// Package cache provides the search-result cache behind an explicit client
// handle. Cache failures are never surfaced to callers: a failed read is a
// miss, a failed write or invalidation is dropped.
package cache

import (
	"context"
	"time"
)

// Cache is a best-effort byte cache.
type Cache interface {
	// Get returns the cached value and true on a hit; any error is a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key for ttl. Errors are dropped.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// DeletePattern removes every key matching the glob pattern. Errors are dropped.
	DeletePattern(ctx context.Context, pattern string)
	// Close releases the underlying client.
	Close() error
}

// Noop is a Cache that stores nothing. Used when no cache backend is
// configured and in tests.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, bool)             { return nil, false }
func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {}
func (Noop) DeletePattern(ctx context.Context, pattern string)              {}
func (Noop) Close() error                                                   { return nil }
