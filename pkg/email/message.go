package email

import (
	"context"
	"fmt"
	"net/mail"
)

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Verifier is implemented by providers that can check connectivity and
// credentials without sending.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Message is a rendered notification.
type Message struct {
	// Domain is the sending domain, used by providers that scope requests
	// by domain.
	Domain  string
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
	// Tag is an optional provider-side category.
	Tag string
}

// Validate checks the fields every provider needs.
func (m Message) Validate() error {
	switch {
	case m.From == "":
		return fmt.Errorf("%w: from is required", ErrInvalidMessage)
	case m.To == "":
		return fmt.Errorf("%w: to is required", ErrInvalidMessage)
	case m.Subject == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case m.Text == "" && m.HTML == "":
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.From); err != nil {
		return fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}
	if m.ReplyTo != "" {
		if _, err := mail.ParseAddress(m.ReplyTo); err != nil {
			return fmt.Errorf("%w: reply-to: %v", ErrInvalidMessage, err)
		}
	}
	return nil
}

// FormatAddress renders name and address as a From header value.
func FormatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}
