package relayclient

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
)

// ErrHoneypot marks a form whose hidden field was filled in.
var ErrHoneypot = errors.New("relayclient: honeypot filled")

// ContactInput is the content of the simple contact form.
type ContactInput struct {
	Name     string
	Email    string
	Message  string
	Honeypot string
}

// FormError is a failed form submission with the status line to display.
type FormError struct {
	Message string
	Err     error
}

func (e *FormError) Error() string       { return e.Message }
func (e *FormError) Unwrap() error       { return e.Err }
func (e *FormError) UserMessage() string { return e.Message }

// ContactForm submits the simple contact form as a question.
type ContactForm struct {
	client Sender
	msg    messages
	logger *slog.Logger
}

// Sender delivers a submission. *Client implements it.
type Sender interface {
	Send(ctx context.Context, s contact.Submission) (string, error)
}

// FormOption configures a ContactForm.
type FormOption func(*ContactForm)

// WithFormTranslator localizes status messages.
func WithFormTranslator(tr Translator, lang string) FormOption {
	return func(f *ContactForm) {
		f.msg = messages{tr: tr, lang: lang}
	}
}

// WithFormLogger sets the logger for rejected submissions.
func WithFormLogger(l *slog.Logger) FormOption {
	return func(f *ContactForm) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewContactForm creates a form posting through s.
func NewContactForm(s Sender, opts ...FormOption) *ContactForm {
	f := &ContactForm{client: s, logger: logger.Discard()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit sends in and returns the message id. Failures are *FormError.
func (f *ContactForm) Submit(ctx context.Context, in ContactInput) (string, error) {
	if in.Honeypot != "" {
		f.logger.WarnContext(ctx, "honeypot field was filled", logger.Component("contact_form"))
		return "", &FormError{Message: f.msg.get("form.honeypot"), Err: ErrHoneypot}
	}

	id, err := f.client.Send(ctx, contact.Submission{
		Topic:   contact.TopicQuestion,
		Name:    in.Name,
		Email:   in.Email,
		Message: in.Message,
	})
	if err != nil {
		return "", &FormError{Message: f.statusMessage(err), Err: err}
	}
	return id, nil
}

func (f *ContactForm) statusMessage(err error) string {
	ae, ok := AsAPIError(err)
	if !ok || ae.Status == 0 {
		return f.msg.get("form.network")
	}
	switch ae.Status {
	case 429:
		return f.msg.get("form.rate_limit")
	case 400:
		return f.msg.get("form.validation")
	case 500:
		return f.msg.get("form.server")
	default:
		return f.msg.get("form.other")
	}
}
