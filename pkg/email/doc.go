// Package email delivers notification messages through one configured
// provider.
//
// Every provider implements Sender and returns the provider's message id.
// Failures are reported as *ProviderError carrying a provider-specific
// code (SMTP reply code, HTTP status, API error name) so that callers can
// classify them without parsing strings:
//
//	sender, err := email.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	id, err := sender.Send(ctx, email.Message{...})
//
// Supported providers: mailgun (default, EU region), postmark, sendgrid,
// ses, smtp and dev (writes messages to a directory).
package email
