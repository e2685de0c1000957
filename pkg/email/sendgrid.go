package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient is the part of *sendgrid.Client the sender uses.
type SendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client SendGridClient
}

// NewSendGridSender creates a SendGrid sender.
func NewSendGridSender(cfg Config) (*SendGridSender, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("%w: SENDGRID_API_KEY is required", ErrInvalidConfig)
	}
	return &SendGridSender{client: sendgrid.NewSendClient(cfg.SendGridAPIKey)}, nil
}

// NewSendGridSenderWithClient wraps an existing client.
func NewSendGridSenderWithClient(client SendGridClient) *SendGridSender {
	return &SendGridSender{client: client}
}

func (s *SendGridSender) Name() string { return ProviderSendGrid }

// Send implements Sender. The message id comes from the X-Message-Id
// response header.
func (s *SendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	from := sgAddress(msg.From)
	to := sgAddress(msg.To)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgAddress(msg.ReplyTo))
	}
	if msg.Tag != "" {
		m.AddCategories(msg.Tag)
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return "", &ProviderError{Provider: ProviderSendGrid, Err: err}
	}
	if resp.StatusCode >= 300 {
		return "", &ProviderError{
			Provider: ProviderSendGrid,
			Code:     httpCode(resp.StatusCode),
			Status:   resp.StatusCode,
			Message:  resp.Body,
		}
	}

	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

func sgAddress(value string) *sgmail.Email {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return sgmail.NewEmail("", value)
	}
	return sgmail.NewEmail(addr.Name, addr.Address)
}
