// Package clientip resolves the address of the client behind an HTTP
// request. The address keys rate limiting and is attached to log records.
//
// Proxy headers are honoured in the configured order; the connection's
// RemoteAddr is the fallback. Only trust headers your edge proxy overwrites,
// otherwise clients can pick their own address.
package clientip
