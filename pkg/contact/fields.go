package contact

import (
	"fmt"

	"github.com/dmitrymomot/contactrelay/pkg/sanitizer"
	"github.com/dmitrymomot/contactrelay/pkg/validator"
)

// Field names match the JSON keys of Submission.
const (
	FieldTopic         = "topic"
	FieldMessage       = "message"
	FieldName          = "name"
	FieldEmail         = "email"
	FieldZeitraum      = "zeitraum"
	FieldPreferredTime = "preferredTime"
	FieldHoneypot      = "honeypot"
)

// Limit is the inclusive rune-length range of a field.
type Limit struct {
	Min int
	Max int
}

var limits = map[string]Limit{
	FieldMessage:       {Min: 10, Max: 2000},
	FieldName:          {Min: 2, Max: 100},
	FieldEmail:         {Min: 0, Max: 255},
	FieldZeitraum:      {Min: 3, Max: 200},
	FieldPreferredTime: {Min: 5, Max: 500},
	FieldHoneypot:      {Min: 0, Max: 0},
}

// LimitOf returns the length limits of field.
func LimitOf(field string) (Limit, bool) {
	l, ok := limits[field]
	return l, ok
}

// SanitizeField normalizes a raw value for field. It is idempotent. Only the
// message keeps line breaks; every other field ends up on one line.
func SanitizeField(field, value string) string {
	l, _ := LimitOf(field)
	return pipeline(field, l.Max)(value)
}

func pipeline(field string, maxLen int) func(string) string {
	switch field {
	case FieldEmail:
		return sanitizer.Email(maxLen)
	case FieldMessage:
		return sanitizer.Field(maxLen)
	default:
		return sanitizer.Line(maxLen)
	}
}

// ValidateField sanitizes value and checks it against the rules of field.
// It returns the normalized value or validator.ValidationErrors describing
// the first failed rule.
func ValidateField(field, value string) (string, error) {
	l, ok := LimitOf(field)
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", validator.ErrInvalidValue, field)
	}

	// Cleaned but not yet truncated, for the maximum check.
	cleaned := pipeline(field, 0)(value)
	normalized := SanitizeField(field, value)

	if err := validator.Apply(rulesFor(field, cleaned, normalized, l)...); err != nil {
		return "", err
	}
	return normalized, nil
}

func rulesFor(field, cleaned, normalized string, l Limit) []validator.Rule {
	key := "contact." + field
	switch field {
	case FieldHoneypot:
		return []validator.Rule{validator.EmptyString(field, normalized)}
	case FieldEmail:
		return []validator.Rule{
			validator.MaxLenString(field, cleaned, l.Max).
				WithKey(key + ".max").
				WithMessage("E-Mail-Adresse ist zu lang."),
			validator.ValidEmail(field, normalized).
				WithKey(key + ".invalid").
				WithMessage("Bitte gib eine gültige E-Mail-Adresse ein."),
		}
	default:
		return []validator.Rule{
			validator.MinLenString(field, normalized, l.Min).
				WithKey(key + ".min").
				WithMessage(minMessages[field]),
			validator.MaxLenString(field, cleaned, l.Max).
				WithKey(key + ".max").
				WithMessage(maxMessages[field]),
		}
	}
}

// German fallbacks used when no translator is at hand.
var (
	minMessages = map[string]string{
		FieldMessage:       "Nachricht muss mindestens 10 Zeichen lang sein.",
		FieldName:          "Name muss mindestens 2 Zeichen lang sein.",
		FieldZeitraum:      "Zeitraum muss mindestens 3 Zeichen lang sein.",
		FieldPreferredTime: "Bevorzugte Zeiten müssen mindestens 5 Zeichen lang sein.",
	}
	maxMessages = map[string]string{
		FieldMessage:       "Nachricht darf maximal 2000 Zeichen lang sein.",
		FieldName:          "Name darf maximal 100 Zeichen lang sein.",
		FieldZeitraum:      "Zeitraum darf maximal 200 Zeichen lang sein.",
		FieldPreferredTime: "Bevorzugte Zeiten dürfen maximal 500 Zeichen lang sein.",
	}
)

// ValidateTopic checks a raw topic value.
func ValidateTopic(value string) (Topic, error) {
	topic := Topic(sanitizer.Trim(value))
	err := validator.Apply(
		validator.InList(FieldTopic, topic, Topics()).
			WithKey("contact.topic.invalid").
			WithMessage("Bitte wähle eine Option aus."),
	)
	if err != nil {
		return "", err
	}
	return topic, nil
}
