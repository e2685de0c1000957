// Package httpserver runs an http.Handler with timeouts and graceful
// shutdown. Run blocks until the context is cancelled, SIGINT or SIGTERM
// arrives, or the listener fails.
package httpserver
