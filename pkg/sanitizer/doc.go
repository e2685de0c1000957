// Package sanitizer cleans untrusted text before it is validated, rendered
// into notification emails or written to logs.
//
// All helpers are pure string functions. Apply and Compose chain them into
// pipelines:
//
//	clean := sanitizer.Compose(
//	    sanitizer.Trim,
//	    sanitizer.StripAngleBrackets,
//	    sanitizer.Trim,
//	)
//
//	safe := clean("  <b>Hallo</b> ") // "bHallo/b"
//
// Field returns the canonical pipeline used for contact form input. It is
// idempotent: applying it to its own output returns the output unchanged.
package sanitizer
