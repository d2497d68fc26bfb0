// Package cache provides the key-value facade shared by the comment
// service, the rate limiter, and the count maintenance path.
//
// Primary backend: Redis (env REDIS_ADDR / REDIS_URL).
// Fallback: a no-op cache where every read misses and every write is
// silently dropped (development only; the rate limiter degrades open).
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent and by Increment when
// there is no existing value to adjust. It marks the one cache outcome that
// is not a failure.
var ErrMiss = errors.New("cache: key not found")

// Cache is the typed facade over the shared key-value store. All methods
// are safe for concurrent use. Callers treat failures as soft and fall
// through to the source of truth, except the rate-limit marker path where
// a configured cache is a hard dependency.
type Cache interface {
	// Get returns the raw value for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL stores value under key with the given expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Increment adjusts an existing numeric value by delta and returns the
	// result. An absent key returns ErrMiss rather than being initialized:
	// derived counters must be rebuilt from the source of truth, not
	// restarted from zero.
	Increment(ctx context.Context, key string, delta int64) (int64, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}

// NewCache selects the cache backend: Redis when a client is provided,
// otherwise the no-op cache. When isProd is true the no-op fallback is
// not allowed.
func NewCache(client *redis.Client, isProd bool) (Cache, error) {
	if client != nil {
		return NewRedis(client), nil
	}
	if isProd {
		return nil, errors.New("production requires Redis; the no-op cache is not allowed")
	}
	return Noop{}, nil
}
