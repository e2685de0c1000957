package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/contactrelay/pkg/email"
)

var (
	addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	validSMTPPorts = []int{25, 465, 587, 2525}
	brevoPrefixes  = []string{"xsmtpsib-", "smtk_"}
)

// ValidateConfig checks the settings required by the selected provider.
// A failed result means the relay runs with mail disabled.
func ValidateConfig(cfg email.Config) Result {
	provider := cfg.ProviderName()
	if !slices.Contains(email.Providers(), provider) {
		return Result{
			Category:   CategoryConfiguration,
			Message:    fmt.Sprintf("Unknown mail provider: %s", cfg.Provider),
			Suggestion: "Set MAIL_PROVIDER to one of: " + strings.Join(email.Providers(), ", "),
			Details:    []Detail{{"MAIL_PROVIDER", cfg.Provider}},
		}
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		details := make([]Detail, 0, len(missing)+1)
		details = append(details, Detail{"MAIL_PROVIDER", provider})
		for _, name := range missing {
			details = append(details, Detail{name, "✗ missing"})
		}
		return Result{
			Category:   CategoryConfiguration,
			Message:    "Missing required mail environment variables",
			Suggestion: "Check the .env file or the deployment environment and set: " + strings.Join(missing, ", "),
			Details:    details,
		}
	}

	if provider == email.ProviderSMTP && !slices.Contains(validSMTPPorts, cfg.SMTPPort) {
		return Result{
			Category:   CategoryConfiguration,
			Message:    fmt.Sprintf("Invalid SMTP port: %d", cfg.SMTPPort),
			Suggestion: "Use a standard SMTP port (25, 465, 587 or 2525). Most providers expect 587.",
			Details: []Detail{
				{"Current port", strconv.Itoa(cfg.SMTPPort)},
				{"Valid ports", "25, 465, 587, 2525"},
			},
		}
	}

	for _, f := range []struct{ name, value string }{
		{"EMAIL_FROM", cfg.From},
		{"EMAIL_TO", cfg.To},
	} {
		if !addressPattern.MatchString(f.value) {
			return Result{
				Category:   CategoryConfiguration,
				Message:    fmt.Sprintf("Invalid email format for %s: %s", f.name, f.value),
				Suggestion: f.name + " must be a plain address such as name@example.com",
				Details:    []Detail{{f.name, f.value}},
			}
		}
	}

	if provider == email.ProviderSMTP && isBrevo(cfg.SMTPHost) && !hasAnyPrefix(cfg.SMTPPass, brevoPrefixes) {
		return Result{
			Success:    true,
			Message:    "Email configuration valid with warnings",
			Suggestion: `For Brevo, SMTP_PASS should be an SMTP key starting with "xsmtpsib-" or "smtk_". Create one under Settings > SMTP & API.`,
			Details: []Detail{
				{"Warning", "SMTP_PASS does not match the Brevo key format"},
				{"Key format", maskSecret(cfg.SMTPPass)},
				{"Expected prefix", "xsmtpsib-... or smtk_..."},
			},
		}
	}

	return Result{Success: true}
}

// Verify checks connectivity when sender supports it. Senders without a
// check are reported as successful.
func Verify(ctx context.Context, sender email.Sender, c *Classifier) Result {
	v, ok := sender.(email.Verifier)
	if !ok {
		return Result{Success: true}
	}
	if err := v.Verify(ctx); err != nil {
		return c.Classify(err)
	}
	return Result{Success: true}
}

// Diagnose validates cfg and, when it is valid, verifies sender.
func Diagnose(ctx context.Context, cfg email.Config, sender email.Sender) Result {
	if r := ValidateConfig(cfg); !r.Success {
		return r
	}
	if sender == nil {
		return NewClassifier(cfg).Classify(errors.New("no mail sender configured"))
	}
	return Verify(ctx, sender, NewClassifier(cfg))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
