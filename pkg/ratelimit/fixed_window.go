package ratelimit

import (
	"context"
	"time"
)

// FixedWindow admits up to limit requests per key in each window.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// FixedWindowOption configures a FixedWindow.
type FixedWindowOption func(*FixedWindow)

// WithPrefix namespaces keys so several limiters can share one store.
func WithPrefix(prefix string) FixedWindowOption {
	return func(fw *FixedWindow) {
		fw.prefix = prefix
	}
}

// WithClock overrides the time source used to compute ResetAt.
func WithClock(now func() time.Time) FixedWindowOption {
	return func(fw *FixedWindow) {
		if now != nil {
			fw.now = now
		}
	}
}

// NewFixedWindow creates a limiter admitting limit requests per window.
func NewFixedWindow(store Store, limit int, window time.Duration, opts ...FixedWindowOption) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}

	fw := &FixedWindow{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Limit returns the number of requests admitted per window.
func (fw *FixedWindow) Limit() int { return fw.limit }

// Window returns the window length.
func (fw *FixedWindow) Window() time.Duration { return fw.window }

// Allow counts one request for key.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := fw.store.IncrementAndGet(ctx, fw.key(key), 1, fw.window)
	if err != nil {
		return nil, err
	}
	return fw.result(count, ttl, count <= int64(fw.limit)), nil
}

// Status reports the current window for key without counting.
func (fw *FixedWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := fw.store.Get(ctx, fw.key(key))
	if err != nil {
		return nil, err
	}
	if count == 0 {
		ttl = fw.window
	}
	return fw.result(count, ttl, count < int64(fw.limit)), nil
}

// Reset clears the counter for key.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return fw.store.Delete(ctx, fw.key(key))
}

func (fw *FixedWindow) key(key string) string {
	if fw.prefix == "" {
		return key
	}
	return fw.prefix + ":" + key
}

func (fw *FixedWindow) result(count int64, ttl time.Duration, allowed bool) *Result {
	remaining := max(fw.limit-int(count), 0)
	return &Result{
		Allowed:   allowed,
		Limit:     fw.limit,
		Remaining: remaining,
		ResetAt:   fw.now().Add(ttl),
		Window:    fw.window,
	}
}
