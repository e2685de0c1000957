// Package contact defines the contact submission shared by the chat widget
// client and the relay server, together with the rules each field must
// satisfy.
//
// Every free-text field goes through the same pipeline: trim, strip '<' and
// '>', truncate to the field maximum. The maximum is checked on the cleaned
// value before truncation so oversized input is rejected instead of cut; the
// minimum is checked after sanitization so input made only of stripped
// characters still fails.
//
// The booking fields Zeitraum and PreferredTime are required for the webinar
// topic and dropped for the question topic.
package contact
