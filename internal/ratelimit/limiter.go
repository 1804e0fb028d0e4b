// Package ratelimit provides a fixed-window request limiter backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	// RetryAfter is the time left in the current window, measured on the limiter's clock.
	RetryAfter time.Duration
}

// Limiter allows at most limit calls per key in each window. Windows are aligned
// to multiples of the window length on the injected clock.
type Limiter struct {
	client redis.Cmdable
	prefix string
	window time.Duration
	limit  int
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the limiter's time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithPrefix sets the Redis key prefix.
func WithPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

// New creates a limiter. window and limit must be positive.
func New(client redis.Cmdable, window time.Duration, limit int, opts ...Option) (*Limiter, error) {
	if window <= 0 {
		return nil, fmt.Errorf("rate limit window must be positive, got %s", window)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", limit)
	}

	l := &Limiter{
		client: client,
		prefix: "ratelimit",
		window: window,
		limit:  limit,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow counts one call for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := now.Truncate(l.window)
	resetAt := start.Add(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, start.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Counters outlive their window by one extra window.
	pipe.Expire(ctx, redisKey, 2*l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:    count <= l.limit,
		Limit:      l.limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: resetAt.Sub(now),
	}, nil
}
