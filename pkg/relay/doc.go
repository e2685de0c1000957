// Package relay is the HTTP face of the contact relay.
//
// It serves three routes:
//
//	POST /api/chat/send-email  validate a contact submission and mail it to the owner
//	GET  /health               liveness with the environment name
//	GET  /metrics              Prometheus exposition
//
// Every response body is JSON. Failures use the envelope
// {"success":false,"error":"..."} with a German message by default; the
// language follows Accept-Language when a translation exists. Provider and
// internal errors never reach the client: they are classified by package
// diagnostics and logged, and the client gets the same generic message for
// every cause.
//
// Two fixed-window limiters guard the relay. The lenient one wraps every
// route except /metrics. The strict one is consulted by the send handler
// after the honeypot check; honeypot hits are not counted.
package relay
