package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/mail"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/contactrelay/pkg/sanitizer"
)

// SMTPDialer is the part of *gomail.Dialer the sender uses.
type SMTPDialer interface {
	Dial() (gomail.SendCloser, error)
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers over SMTP with STARTTLS or implicit TLS on 465.
type SMTPSender struct {
	dialer SMTPDialer
	host   string
	now    func() time.Time
}

// NewSMTPSender creates an SMTP sender from cfg.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST is required", ErrInvalidConfig)
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	d := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass)
	d.SSL = port == 465
	d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}

	return &SMTPSender{dialer: d, host: cfg.SMTPHost, now: time.Now}, nil
}

// NewSMTPSenderWithDialer wraps an existing dialer.
func NewSMTPSenderWithDialer(d SMTPDialer, host string) *SMTPSender {
	return &SMTPSender{dialer: d, host: host, now: time.Now}
}

func (s *SMTPSender) Name() string { return ProviderSMTP }

// Send implements Sender. The returned id is the generated Message-ID.
// gomail has no context support; ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &ProviderError{Provider: ProviderSMTP, Err: err}
	}

	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.messageDomain(msg))

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)
	m.SetDateHeader("Date", s.now())

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", smtpError(err)
	}
	return id, nil
}

// Verify connects and authenticates without sending.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ProviderError{Provider: ProviderSMTP, Err: err}
	}
	conn, err := s.dialer.Dial()
	if err != nil {
		return smtpError(err)
	}
	return conn.Close()
}

func (s *SMTPSender) messageDomain(msg Message) string {
	if msg.Domain != "" {
		return msg.Domain
	}
	if addr, err := mail.ParseAddress(msg.From); err == nil {
		if domain := sanitizer.ExtractEmailDomain(addr.Address); domain != "" {
			return domain
		}
	}
	return s.host
}

func smtpError(err error) *ProviderError {
	pe := &ProviderError{Provider: ProviderSMTP, Err: err}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		pe.Code = strconv.Itoa(tpErr.Code)
		pe.Message = tpErr.Msg
	}
	return pe
}
