// Package relayclient posts contact submissions to the relay.
//
// Client.Send makes exactly one attempt and turns every failure into an
// *APIError carrying a German message fit for the visitor. It satisfies
// conversation.Submitter, so the chat widget hands its confirmed form
// straight to it.
//
// ContactForm is the plain form variant: the topic is always "frage", a
// filled honeypot fails locally without touching the network, and errors
// are reduced to one short status message per HTTP status class.
package relayclient
