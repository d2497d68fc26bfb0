// Package ratelimit enforces the per-actor comment cooldown with a
// fixed-window presence marker in the shared cache.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/a1nn1997/realtime-blog-backend/internal/cache"
)

// CommentWindow is the cooldown between comments from one actor: one
// comment per window.
const CommentWindow = 100 * time.Second

// Limiter is a fixed-window limiter keyed by actor id. With the no-op
// cache backend it never limits (degrade-open for cache-less deployments);
// with a real backend, backend errors propagate and the caller rejects the
// write (fail closed).
type Limiter struct {
	cache  cache.Cache
	window time.Duration
}

func New(c cache.Cache, window time.Duration) *Limiter {
	if window <= 0 {
		window = CommentWindow
	}
	return &Limiter{cache: c, window: window}
}

// NewCommentLimiter builds the limiter with the standard comment window.
func NewCommentLimiter(c cache.Cache) *Limiter {
	return New(c, CommentWindow)
}

// CheckAndSet reports whether actor is currently limited. A first call in
// an open window plants the marker and returns false; later calls within
// the window return true without refreshing the marker, so repeated
// attempts never extend the window. The check-then-set pair is not atomic;
// two concurrent calls can both pass. That race is accepted: the limiter
// mitigates abuse, it does not enforce a hard quota.
func (l *Limiter) CheckAndSet(ctx context.Context, actorID uuid.UUID) (bool, error) {
	key := markerKey(actorID)

	present, err := l.cache.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	if present {
		return true, nil
	}

	if err := l.cache.SetWithTTL(ctx, key, []byte("1"), l.window); err != nil {
		return false, fmt.Errorf("rate limit marker: %w", err)
	}
	return false, nil
}

func markerKey(actorID uuid.UUID) string {
	return fmt.Sprintf("rate_limit:comment:%s", actorID)
}
