package sanitizer

import (
	"strings"
	"unicode"
)

// RemoveControlChars drops control characters but keeps newlines and tabs,
// which are legitimate in free-text messages.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// PreventHeaderInjection removes characters that could split a mail or HTTP
// header when the value ends up in one (subject lines, display names).
func PreventHeaderInjection(s string) string {
	result := strings.ReplaceAll(s, "\r", "")
	result = strings.ReplaceAll(result, "\n", " ")
	return strings.ReplaceAll(result, "\x00", "")
}
