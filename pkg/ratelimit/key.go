package ratelimit

import (
	"net/http"

	"github.com/dmitrymomot/contactrelay/pkg/clientip"
)

// KeyFunc extracts a unique identifier from an HTTP request for rate limiting.
type KeyFunc func(*http.Request) string

// ByIP keys requests by client address. It prefers the address resolved by
// clientip.Middleware and falls back to resolving it from the request.
func ByIP(r *http.Request) string {
	if ip := clientip.GetIPFromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.GetIP(r)
}
