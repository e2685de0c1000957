package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactrelay/pkg/email"
)

func validMessage() email.Message {
	return email.Message{
		Domain:  "example.com",
		From:    "Kontaktformular <noreply@example.com>",
		To:      "owner@example.com",
		ReplyTo: "jo@example.org",
		Subject: "Frage von Jo",
		Text:    "Hallo",
		HTML:    "<p>Hallo</p>",
	}
}

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.Message)
		errMsg string
	}{
		{name: "valid", mutate: func(*email.Message) {}},
		{name: "text only", mutate: func(m *email.Message) { m.HTML = "" }},
		{name: "missing from", mutate: func(m *email.Message) { m.From = "" }, errMsg: "from is required"},
		{name: "missing to", mutate: func(m *email.Message) { m.To = "" }, errMsg: "to is required"},
		{name: "missing subject", mutate: func(m *email.Message) { m.Subject = "" }, errMsg: "subject is required"},
		{name: "missing body", mutate: func(m *email.Message) { m.Text, m.HTML = "", "" }, errMsg: "body is required"},
		{name: "bad reply-to", mutate: func(m *email.Message) { m.ReplyTo = "not an address" }, errMsg: "reply-to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := validMessage()
			tt.mutate(&msg)
			err := msg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, email.ErrInvalidMessage)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("default provider is mailgun", func(t *testing.T) {
		t.Parallel()

		cfg := email.Config{}
		assert.Equal(t, email.ProviderMailgun, cfg.ProviderName())
		assert.Equal(t,
			[]string{"EMAIL_FROM", "EMAIL_TO", "MAILGUN_API_KEY", "MAIL_DOMAIN"},
			cfg.Missing(),
		)
		assert.ErrorIs(t, cfg.Validate(), email.ErrInvalidConfig)
	})

	t.Run("smtp requirements", func(t *testing.T) {
		t.Parallel()

		cfg := email.Config{Provider: " SMTP ", From: "a@b.de", To: "c@d.de", SMTPHost: "smtp.example.com"}
		assert.Equal(t, []string{"SMTP_USER", "SMTP_PASS"}, cfg.Missing())
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		cfg := email.Config{Provider: "pigeon"}
		assert.ErrorIs(t, cfg.Validate(), email.ErrUnknownProvider)
	})

	t.Run("sender header", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, `"Kontaktformular" <noreply@example.com>`, email.Config{FromName: "Kontaktformular", From: "noreply@example.com"}.Sender())
		assert.Equal(t, "noreply@example.com", email.Config{From: "noreply@example.com"}.Sender())
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	base := email.Config{From: "noreply@example.com", To: "owner@example.com"}

	t.Run("dev", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.Provider = email.ProviderDev
		cfg.DevDir = t.TempDir()
		sender, err := email.New(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &email.DevSender{}, sender)
	})

	t.Run("postmark", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.Provider = email.ProviderPostmark
		cfg.PostmarkServerToken = "token"
		sender, err := email.New(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &email.PostmarkSender{}, sender)
	})

	t.Run("mailgun", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.MailgunAPIKey = "key"
		cfg.Domain = "mg.example.com"
		cfg.MailgunAPIBase = "https://api.eu.mailgun.net"
		sender, err := email.New(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &email.MailgunSender{}, sender)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		cfg := base
		cfg.Provider = email.ProviderSendGrid
		_, err := email.New(context.Background(), cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestDisabled(t *testing.T) {
	t.Parallel()

	_, err := email.Disabled{}.Send(context.Background(), validMessage())
	assert.ErrorIs(t, err, email.ErrMailDisabled)

	_, err = email.Disabled{Reason: email.ErrInvalidConfig}.Send(context.Background(), validMessage())
	assert.ErrorIs(t, err, email.ErrMailDisabled)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestProviderError(t *testing.T) {
	t.Parallel()

	inner := context.DeadlineExceeded
	err := error(&email.ProviderError{Provider: "smtp", Code: "535", Message: "auth failed", Err: inner})

	assert.Equal(t, "email: smtp [535]: auth failed", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pe, ok := email.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, "535", pe.Code)

	_, ok = email.AsProviderError(inner)
	assert.False(t, ok)
}
