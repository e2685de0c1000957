package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"
)

// Standard rate limit response headers (IETF RateLimit header fields draft).
const (
	HeaderLimit      = "RateLimit-Limit"
	HeaderRemaining  = "RateLimit-Remaining"
	HeaderReset      = "RateLimit-Reset"
	HeaderPolicy     = "RateLimit-Policy"
	HeaderRetryAfter = "Retry-After"
)

// SetHeaders writes the rate limit headers describing result. Reset is the
// number of seconds until the window ends. Retry-After is added when the
// request was rejected.
func SetHeaders(w http.ResponseWriter, result *Result, now time.Time) {
	if result == nil {
		return
	}

	reset := secondsCeil(result.ResetAt.Sub(now))

	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(result.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(result.Remaining))
	h.Set(HeaderReset, strconv.Itoa(reset))
	if result.Window > 0 {
		h.Set(HeaderPolicy, fmt.Sprintf("%d;w=%d", result.Limit, secondsCeil(result.Window)))
	}

	if !result.Allowed {
		h.Set(HeaderRetryAfter, strconv.Itoa(max(secondsCeil(result.RetryAfter(now)), 1)))
	}
}

func secondsCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
