package email

import (
	"context"
	"errors"
	"fmt"

	mailgun "github.com/mailgun/mailgun-go/v5"
)

// MailgunSender delivers through the Mailgun HTTP API.
type MailgunSender struct {
	mg     mailgun.Mailgun
	domain string
}

// NewMailgunSender creates a Mailgun sender. A nil client is built from
// cfg using the configured API base (EU by default).
func NewMailgunSender(cfg Config, mg mailgun.Mailgun) (*MailgunSender, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("%w: MAIL_DOMAIN is required", ErrInvalidConfig)
	}
	if mg == nil {
		if cfg.MailgunAPIKey == "" {
			return nil, fmt.Errorf("%w: MAILGUN_API_KEY is required", ErrInvalidConfig)
		}
		mg = mailgun.NewMailgun(cfg.MailgunAPIKey)
		if cfg.MailgunAPIBase != "" {
			mg.SetAPIBase(cfg.MailgunAPIBase)
		}
	}
	return &MailgunSender{mg: mg, domain: cfg.Domain}, nil
}

func (s *MailgunSender) Name() string { return ProviderMailgun }

// Send implements Sender.
func (s *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	domain := msg.Domain
	if domain == "" {
		domain = s.domain
	}

	m := mailgun.NewMessage(domain, msg.From, msg.Subject, msg.Text)
	if err := m.AddRecipient(msg.To); err != nil {
		return "", fmt.Errorf("%w: recipient: %v", ErrInvalidMessage, err)
	}
	if msg.ReplyTo != "" {
		m.SetReplyTo(msg.ReplyTo)
	}
	if msg.HTML != "" {
		m.SetHTML(msg.HTML)
	}

	resp, err := s.mg.Send(ctx, m)
	if err != nil {
		return "", mailgunError(err)
	}
	return resp.ID, nil
}

func mailgunError(err error) *ProviderError {
	pe := &ProviderError{Provider: ProviderMailgun, Err: err}
	var ure *mailgun.UnexpectedResponseError
	if errors.As(err, &ure) {
		pe.Status = ure.Actual
		pe.Code = httpCode(ure.Actual)
	}
	return pe
}
