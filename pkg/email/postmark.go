package email

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkSender delivers through the Postmark API.
type PostmarkSender struct {
	client *postmark.Client
}

// PostmarkOption configures a PostmarkSender.
type PostmarkOption func(*postmark.Client)

// WithPostmarkBaseURL points the client at another API host.
func WithPostmarkBaseURL(url string) PostmarkOption {
	return func(c *postmark.Client) {
		c.BaseURL = url
	}
}

// NewPostmarkSender creates a Postmark sender. The account token is only
// needed for account-level endpoints and may be empty.
func NewPostmarkSender(cfg Config, opts ...PostmarkOption) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	}
	client := postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	for _, opt := range opts {
		opt(client)
	}
	return &PostmarkSender{client: client}, nil
}

func (s *PostmarkSender) Name() string { return ProviderPostmark }

// Send implements Sender. Rejections carry a Postmark ErrorCode, which
// becomes the postmark/<code> error code.
func (s *PostmarkSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       msg.From,
		To:         msg.To,
		ReplyTo:    msg.ReplyTo,
		Subject:    msg.Subject,
		TextBody:   msg.Text,
		HTMLBody:   msg.HTML,
		Tag:        msg.Tag,
		TrackOpens: false,
	})
	if resp.ErrorCode > 0 {
		return "", &ProviderError{
			Provider: ProviderPostmark,
			Code:     fmt.Sprintf("postmark/%d", resp.ErrorCode),
			Message:  resp.Message,
			Err:      err,
		}
	}
	if err != nil {
		return "", &ProviderError{Provider: ProviderPostmark, Err: err}
	}
	return resp.MessageID, nil
}
