package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

// simpleEmailRegex is the local@domain.tld shape: no whitespace, a single '@'
// and at least one dot in the domain.
var simpleEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether value is a bare address of the form local@domain.tld.
// Display-name forms such as "Jo <jo@example.de>" are rejected.
func IsEmail(value string) bool {
	if !simpleEmailRegex.MatchString(value) {
		return false
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}

	_, domain, _ := strings.Cut(addr.Address, "@")
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	for part := range strings.SplitSeq(domain, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// ValidEmail validates that value is a syntactically valid address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return IsEmail(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
			TranslationValues: map[string]any{
				"field": field,
			},
		},
	}
}
