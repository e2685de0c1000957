// Package ratelimit implements fixed-window request limiting for HTTP
// handlers.
//
// A FixedWindow limiter counts hits per key in windows that start on the
// first hit and last a fixed duration. Windows do not slide: a client can
// spend its quota at the end of one window and again at the start of the
// next, admitting up to twice the limit in a short span. Counters live in a
// Store; MemoryStore keeps them in process memory and RedisStore in Redis.
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimit.NewFixedWindow(store, 5, 15*time.Minute,
//	    ratelimit.WithPrefix("email"),
//	)
//
//	r.Use(ratelimit.Middleware(limiter, ratelimit.ByIP,
//	    ratelimit.WithOnLimitReached(writeTooManyRequests),
//	))
//
// Handlers that must decide for themselves when a request counts, for
// example after rejecting obvious junk, call limiter.Allow and SetHeaders
// directly.
//
// Store failures fail open: the request passes and the error is reported to
// the configured error hook.
package ratelimit
