package diagnostics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/contactrelay/pkg/email"
)

type matchRule struct {
	category   Category
	codes      []string
	substrings []string
}

// rules are checked in order; the first match wins.
var rules = []matchRule{
	{
		category:   CategoryConnection,
		codes:      []string{"ETIMEDOUT", "ECONNREFUSED", "ENOTFOUND", "ECONNRESET", "EHOSTUNREACH", "ENETUNREACH"},
		substrings: []string{"connection refused", "no such host", "connection reset", "etimedout", "econnrefused", "enotfound"},
	},
	{
		category:   CategoryAuthentication,
		codes:      []string{"EAUTH", "535", "http/401", "http/403", "postmark/10"},
		substrings: []string{"535", "authentication", "username and password not accepted", "forbidden", "invalid api key"},
	},
	{
		category:   CategorySenderVerification,
		codes:      []string{"550", "553", "MessageRejected", "MailFromDomainNotVerifiedException", "postmark/400", "postmark/401"},
		substrings: []string{"550", "not verified", "sender", "not authorized"},
	},
	{
		category:   CategoryRateLimit,
		codes:      []string{"http/429", "Throttling", "TooManyRequestsException", "postmark/429"},
		substrings: []string{"rate limit", "quota", "too many"},
	},
	{
		category:   CategoryConfiguration,
		codes:      []string{"ConfigurationSetDoesNotExist", "postmark/300", "http/404"},
		substrings: []string{"domain not found", "invalid configuration"},
	},
	{
		category:   CategoryTimeout,
		codes:      []string{codeTimeout},
		substrings: []string{"timeout", "timed out", "deadline exceeded"},
	},
}

// Classifier categorizes delivery failures for one mail configuration.
type Classifier struct {
	cfg email.Config
}

// NewClassifier creates a classifier whose suggestions reference cfg.
func NewClassifier(cfg email.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify explains err. A nil error is a success.
func (c *Classifier) Classify(err error) Result {
	if err == nil {
		return Result{Success: true}
	}

	code := ExtractCode(err)
	category := match(code, err.Error())

	r := c.describe(category, code, err)
	r.Category = category
	r.Code = code
	return r
}

func match(code, message string) Category {
	if code != "" {
		for _, r := range rules {
			if slices.Contains(r.codes, code) {
				return r.category
			}
		}
	}

	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, s := range r.substrings {
			if strings.Contains(lower, s) {
				return r.category
			}
		}
	}
	return CategoryUnknown
}

func (c *Classifier) describe(category Category, code string, err error) Result {
	cfg := c.cfg
	provider := cfg.ProviderName()
	host, port := c.endpoint()

	switch category {
	case CategoryConnection:
		return Result{
			Message:    fmt.Sprintf("Cannot connect to the %s endpoint: %v", provider, err),
			Suggestion: fmt.Sprintf("Check network connectivity and firewall rules, and verify the server is reachable. Test with: curl -v telnet://%s:%s", host, port),
			Details: []Detail{
				{"Provider", provider},
				{"Host", orNotSet(host)},
				{"Port", orNotSet(port)},
				{"Error code", code},
			},
		}
	case CategoryAuthentication:
		suggestion := c.credentialHint()
		if isBrevo(cfg.SMTPHost) {
			suggestion = "Brevo authentication failed. Check:\n" +
				"  1. SMTP_USER is your Brevo login\n" +
				"  2. SMTP_PASS is an SMTP key from Settings > SMTP & API\n" +
				"  3. SMTP is enabled for the account\n" +
				"  4. The account is not suspended"
		}
		return Result{
			Message:    fmt.Sprintf("Authentication with %s failed", provider),
			Suggestion: suggestion,
			Details: []Detail{
				{"Provider", provider},
				{"User", orNotSet(c.user())},
				{"Key", maskSecret(c.secret())},
			},
		}
	case CategorySenderVerification:
		return Result{
			Message: fmt.Sprintf("Sender not accepted: %s", orNotSet(cfg.From)),
			Suggestion: "Verify the sender address or domain with the provider:\n" +
				"  • Complete sender/domain verification in the provider dashboard\n" +
				"  • Make sure EMAIL_FROM exactly matches the verified address",
			Details: []Detail{
				{"Sender", orNotSet(cfg.From)},
				{"Domain", orNotSet(cfg.Domain)},
			},
		}
	case CategoryRateLimit:
		return Result{
			Message:    "Provider sending limit exceeded",
			Suggestion: "Wait for the provider limit to reset or upgrade the plan.",
			Details:    []Detail{{"Error message", err.Error()}},
		}
	case CategoryConfiguration:
		return Result{
			Message:    fmt.Sprintf("The %s account or domain configuration was rejected", provider),
			Suggestion: "Check MAIL_DOMAIN, the API region and any configuration set referenced by the account.",
			Details: []Detail{
				{"Provider", provider},
				{"Domain", orNotSet(cfg.Domain)},
			},
		}
	case CategoryTimeout:
		return Result{
			Message:    fmt.Sprintf("Request to %s timed out", provider),
			Suggestion: "The provider did not answer in time. Check network connectivity and firewall settings.",
			Details: []Detail{
				{"Host", orNotSet(host)},
				{"Port", orNotSet(port)},
			},
		}
	default:
		return Result{
			Message:    err.Error(),
			Suggestion: "Review the error message for more details.",
			Details:    []Detail{{"Full error", err.Error()}},
		}
	}
}

func (c *Classifier) endpoint() (string, string) {
	cfg := c.cfg
	switch cfg.ProviderName() {
	case email.ProviderSMTP:
		port := ""
		if cfg.SMTPPort > 0 {
			port = strconv.Itoa(cfg.SMTPPort)
		}
		return cfg.SMTPHost, port
	case email.ProviderMailgun:
		return strings.TrimPrefix(cfg.MailgunAPIBase, "https://"), "443"
	case email.ProviderPostmark:
		return "api.postmarkapp.com", "443"
	case email.ProviderSendGrid:
		return "api.sendgrid.com", "443"
	case email.ProviderSES:
		return "email." + cfg.AWSRegion + ".amazonaws.com", "443"
	default:
		return "", ""
	}
}

func (c *Classifier) user() string {
	if c.cfg.ProviderName() == email.ProviderSMTP {
		return c.cfg.SMTPUser
	}
	return ""
}

func (c *Classifier) secret() string {
	cfg := c.cfg
	switch cfg.ProviderName() {
	case email.ProviderSMTP:
		return cfg.SMTPPass
	case email.ProviderMailgun:
		return cfg.MailgunAPIKey
	case email.ProviderPostmark:
		return cfg.PostmarkServerToken
	case email.ProviderSendGrid:
		return cfg.SendGridAPIKey
	default:
		return ""
	}
}

func (c *Classifier) credentialHint() string {
	switch c.cfg.ProviderName() {
	case email.ProviderSMTP:
		return "Check that SMTP_USER and SMTP_PASS are correct."
	case email.ProviderMailgun:
		return "Check MAILGUN_API_KEY and that MAILGUN_API_BASE matches the account region (EU or US)."
	case email.ProviderPostmark:
		return "Check POSTMARK_SERVER_TOKEN."
	case email.ProviderSendGrid:
		return "Check SENDGRID_API_KEY and its Mail Send permission."
	case email.ProviderSES:
		return "Check the AWS credentials and their ses:SendEmail permission."
	default:
		return "Check the provider credentials."
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}

// maskSecret shows only the first characters of a credential.
func maskSecret(s string) string {
	if s == "" {
		return "not set"
	}
	if len(s) <= 10 {
		return s[:min(3, len(s))] + "..."
	}
	return s[:10] + "..."
}

func isBrevo(host string) bool {
	h := strings.ToLower(host)
	return strings.Contains(h, "brevo.com") || strings.Contains(h, "sendinblue.com")
}
