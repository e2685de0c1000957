package ratelimit

import (
	"context"
	"time"
)

// Result contains the result of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the rate limit window resets.
	ResetAt time.Time

	// Window is the configured window length.
	Window time.Duration
}

// RetryAfter returns how long to wait before the next request is allowed,
// measured from now. Returns 0 if the current request was allowed.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	if d := r.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	// Allow counts one request for key.
	Allow(ctx context.Context, key string) (*Result, error)

	// Status reports the current window for key without counting.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the counter for key.
	Reset(ctx context.Context, key string) error
}

// Store holds fixed-window counters.
type Store interface {
	// IncrementAndGet atomically adds incr to the counter for key, starting a
	// new window of the given length when none is active, and returns the new
	// count and the time left in the window.
	IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (current int64, ttl time.Duration, err error)

	// Get returns the current counter value and TTL for the given key.
	Get(ctx context.Context, key string) (current int64, ttl time.Duration, err error)

	// Delete removes the given key from the store.
	Delete(ctx context.Context, key string) error
}
