// Package diagnostics explains mail delivery problems to operators.
//
// Classify turns a provider error into a Result with a category, a code
// and a suggested fix that mentions the configured host, user or sender.
// ValidateConfig checks the mail settings at startup and Verify runs a
// connectivity check on providers that support one. Format renders a
// Result as a multi-line report for terminals and logs.
//
// Results are meant for logs and the CLI only. They never reach HTTP
// clients.
package diagnostics
