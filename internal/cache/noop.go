package cache

import (
	"context"
	"time"
)

// Noop is the cache-less backend: every read misses, every write succeeds
// without storing anything. With it the comment service always rebuilds
// from the database and the rate limiter never limits.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrMiss }

func (Noop) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (Noop) Delete(ctx context.Context, key string) error { return nil }

func (Noop) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return 0, ErrMiss
}

func (Noop) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
