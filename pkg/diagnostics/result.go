package diagnostics

import (
	"log/slog"
	"strings"
)

// Category groups failures by their likely cause.
type Category string

const (
	CategoryConnection         Category = "CONNECTION"
	CategoryAuthentication     Category = "AUTHENTICATION"
	CategorySenderVerification Category = "SENDER_VERIFICATION"
	CategoryRateLimit          Category = "RATE_LIMIT"
	CategoryConfiguration      Category = "CONFIGURATION"
	CategoryTimeout            Category = "TIMEOUT"
	CategoryUnknown            Category = "UNKNOWN"
)

// Detail is one labelled fact in a report.
type Detail struct {
	Key   string
	Value string
}

// Result is the outcome of a check or the classification of a failure.
type Result struct {
	Success    bool
	Category   Category
	Code       string
	Message    string
	Suggestion string
	Details    []Detail
}

// Detail returns the value stored under key.
func (r Result) Detail(key string) (string, bool) {
	for _, d := range r.Details {
		if d.Key == key {
			return d.Value, true
		}
	}
	return "", false
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	if r.Success && len(r.Details) == 0 {
		return slog.GroupValue(slog.Bool("success", true))
	}
	attrs := []slog.Attr{slog.Bool("success", r.Success)}
	if r.Category != "" {
		attrs = append(attrs, slog.String("category", string(r.Category)))
	}
	attrs = append(attrs, slog.String("message", r.Message))
	if r.Code != "" {
		attrs = append(attrs, slog.String("code", r.Code))
	}
	if r.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", r.Suggestion))
	}
	if len(r.Details) > 0 {
		details := make([]any, 0, len(r.Details))
		for _, d := range r.Details {
			details = append(details, slog.String(d.Key, d.Value))
		}
		attrs = append(attrs, slog.Group("details", details...))
	}
	return slog.GroupValue(attrs...)
}

const rule = "═══════════════════════════════════════════════════════════════"

// Format renders r as an operator report.
func Format(r Result) string {
	if r.Success && len(r.Details) == 0 {
		return "✓ Email configuration validated successfully"
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line("")
	line(rule)
	if r.Success {
		line("✓ " + r.Message)
	} else {
		line("✗ Email Configuration Error [" + string(r.Category) + "]")
	}
	line(rule)
	if !r.Success {
		if r.Code != "" {
			line("Error Code: " + r.Code)
		}
		if r.Message != "" {
			line("Message: " + r.Message)
		}
	}
	if len(r.Details) > 0 {
		line("")
		line("Details:")
		for _, d := range r.Details {
			line("  • " + d.Key + ": " + d.Value)
		}
	}
	if r.Suggestion != "" {
		line("")
		line("Suggested Fix:")
		line(r.Suggestion)
	}
	line(rule)
	return b.String()
}
