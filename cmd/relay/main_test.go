package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
)

func setMailEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, k := range []string{
		"MAIL_PROVIDER", "MAIL_DOMAIN", "EMAIL_FROM", "EMAIL_TO", "MAIL_DEV_DIR",
		"SMTP_HOST", "SMTP_USER", "SMTP_PASS", "REDIS_URL",
	} {
		t.Setenv(k, vars[k])
	}
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "error")
}

func noEnvFile(t *testing.T) []string {
	return []string{"-env-file", filepath.Join(t.TempDir(), "missing.env")}
}

func TestRun_UnknownCommand(t *testing.T) {
	setMailEnv(t, nil)

	err := run(context.Background(), append([]string{"deploy"}, noEnvFile(t)...), &bytes.Buffer{})
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_CheckReportsMissingVariables(t *testing.T) {
	setMailEnv(t, map[string]string{"MAIL_PROVIDER": "smtp", "EMAIL_FROM": "noreply@example.com"})

	var out bytes.Buffer
	err := run(context.Background(), append([]string{"check"}, noEnvFile(t)...), &out)

	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), "Missing required mail environment variables")
	assert.Contains(t, out.String(), "SMTP_PASS")
	assert.Contains(t, out.String(), "EMAIL_TO")
}

func TestRun_CheckWithDevSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mail")
	setMailEnv(t, map[string]string{
		"MAIL_PROVIDER": "dev",
		"EMAIL_FROM":    "noreply@example.com",
		"EMAIL_TO":      "owner@example.com",
		"MAIL_DEV_DIR":  dir,
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), append([]string{"check"}, noEnvFile(t)...), &out))
	assert.Contains(t, out.String(), "validated successfully")
	assert.Contains(t, out.String(), "rate limit store: memory")
	assert.DirExists(t, dir)
}

func TestRun_CheckPingsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	setMailEnv(t, map[string]string{
		"MAIL_PROVIDER": "dev",
		"EMAIL_FROM":    "noreply@example.com",
		"EMAIL_TO":      "owner@example.com",
		"MAIL_DEV_DIR":  t.TempDir(),
		"REDIS_URL":     "redis://" + mr.Addr(),
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), append([]string{"check"}, noEnvFile(t)...), &out))
	assert.Contains(t, out.String(), "rate limit store: redis ok")

	mr.Close()
	t.Setenv("REDIS_RETRY_ATTEMPTS", "1")
	out.Reset()
	err := run(context.Background(), append([]string{"check"}, noEnvFile(t)...), &out)
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), "rate limit store: redis unavailable")
}

func TestRun_SendTest(t *testing.T) {
	dir := t.TempDir()
	setMailEnv(t, map[string]string{
		"MAIL_PROVIDER": "dev",
		"EMAIL_FROM":    "noreply@example.com",
		"EMAIL_TO":      "owner@example.com",
		"MAIL_DEV_DIR":  dir,
	})

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), append([]string{"send-test"}, noEnvFile(t)...), &out))
	assert.Contains(t, out.String(), "test email sent to owner@example.com")

	files, err := filepath.Glob(filepath.Join(dir, "*.eml"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[Test] Frage von Relay Test")
}

func TestLoadSettings_Defaults(t *testing.T) {
	setMailEnv(t, nil)

	s, err := loadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":4000", s.HTTP.ListenAddr())
	assert.Equal(t, 5, s.RateLimit.EmailLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, s.Relay.AllowedOrigins)
	assert.False(t, s.Redis.Enabled())
}

func TestNewSender(t *testing.T) {
	t.Parallel()

	smtp := email.Config{
		Provider: email.ProviderSMTP,
		From:     "noreply@example.com",
		To:       "owner@example.com",
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		SMTPUser: "owner@example.com",
		SMTPPass: "secret",
	}

	tests := []struct {
		name     string
		mutate   func(*email.Config)
		disabled bool
		logged   string
	}{
		{name: "valid", mutate: func(*email.Config) {}},
		{name: "port outside the standard set", mutate: func(c *email.Config) { c.SMTPPort = 9999 }, disabled: true, logged: "Invalid SMTP port: 9999"},
		{name: "malformed sender address", mutate: func(c *email.Config) { c.From = "not-an-address" }, disabled: true, logged: "Invalid email format for EMAIL_FROM"},
		{name: "missing password", mutate: func(c *email.Config) { c.SMTPPass = "" }, disabled: true, logged: "Missing required mail environment variables"},
		{name: "brevo key warning keeps mail enabled", mutate: func(c *email.Config) {
			c.SMTPHost = "smtp-relay.brevo.com"
			c.SMTPPass = "plain-password"
		}, logged: "SMTP_PASS does not match the Brevo key format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := smtp
			tt.mutate(&cfg)
			var logs bytes.Buffer

			sender := newSender(context.Background(), cfg, logger.New(logger.WithOutput(&logs), logger.WithFormat(logger.FormatJSON)))

			_, isDisabled := sender.(email.Disabled)
			assert.Equal(t, tt.disabled, isDisabled)
			if tt.disabled {
				_, err := sender.Send(context.Background(), email.Message{})
				assert.ErrorIs(t, err, email.ErrMailDisabled)
			} else {
				assert.IsType(t, &email.SMTPSender{}, sender)
			}
			if tt.logged != "" {
				assert.Contains(t, logs.String(), tt.logged)
			}
		})
	}
}
