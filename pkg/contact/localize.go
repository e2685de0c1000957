package contact

import "github.com/dmitrymomot/contactrelay/pkg/validator"

// FieldError is the wire shape of a single field failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Translator resolves a message key for a language.
type Translator interface {
	T(lang, key string, args ...string) string
}

// Localize renders validation errors in lang. A nil translator keeps the
// German fallback messages.
func Localize(tr Translator, lang string, errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg := e.Message
		if tr != nil && e.TranslationKey != "" {
			msg = tr.T(lang, e.TranslationKey, e.Args()...)
		}
		out = append(out, FieldError{Field: e.Field, Message: msg})
	}
	return out
}
