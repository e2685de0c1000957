package email

import (
	"fmt"
	"strings"
)

// Provider names.
const (
	ProviderMailgun  = "mailgun"
	ProviderPostmark = "postmark"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderSMTP     = "smtp"
	ProviderDev      = "dev"
)

// Providers lists the accepted MAIL_PROVIDER values.
func Providers() []string {
	return []string{ProviderMailgun, ProviderPostmark, ProviderSendGrid, ProviderSES, ProviderSMTP, ProviderDev}
}

// Config selects and configures the provider.
type Config struct {
	Provider string `env:"MAIL_PROVIDER" envDefault:"mailgun"`
	Domain   string `env:"MAIL_DOMAIN"`
	From     string `env:"EMAIL_FROM"`
	FromName string `env:"EMAIL_FROM_NAME" envDefault:"Kontaktformular"`
	To       string `env:"EMAIL_TO"`

	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`
	MailgunAPIBase string `env:"MAILGUN_API_BASE" envDefault:"https://api.eu.mailgun.net"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`

	AWSRegion string `env:"AWS_REGION" envDefault:"eu-central-1"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	DevDir string `env:"MAIL_DEV_DIR" envDefault:"./tmp/mail"`
}

// ProviderName returns the normalized provider name.
func (c Config) ProviderName() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		return ProviderMailgun
	}
	return p
}

// Sender returns the From header value.
func (c Config) Sender() string {
	return FormatAddress(c.FromName, c.From)
}

// Missing lists the environment variables the selected provider needs but
// which are empty.
func (c Config) Missing() []string {
	var missing []string
	need := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	need(c.From, "EMAIL_FROM")
	need(c.To, "EMAIL_TO")

	switch c.ProviderName() {
	case ProviderMailgun:
		need(c.MailgunAPIKey, "MAILGUN_API_KEY")
		need(c.Domain, "MAIL_DOMAIN")
	case ProviderPostmark:
		need(c.PostmarkServerToken, "POSTMARK_SERVER_TOKEN")
	case ProviderSendGrid:
		need(c.SendGridAPIKey, "SENDGRID_API_KEY")
	case ProviderSES:
		need(c.AWSRegion, "AWS_REGION")
	case ProviderSMTP:
		need(c.SMTPHost, "SMTP_HOST")
		need(c.SMTPUser, "SMTP_USER")
		need(c.SMTPPass, "SMTP_PASS")
	case ProviderDev:
		need(c.DevDir, "MAIL_DEV_DIR")
	}
	return missing
}

// Validate reports missing settings and unknown providers.
func (c Config) Validate() error {
	known := false
	for _, p := range Providers() {
		if c.ProviderName() == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}
