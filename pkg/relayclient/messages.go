package relayclient

// Translator resolves message keys.
type Translator interface {
	T(lang, key string, args ...string) string
}

// German fallbacks used without a translator.
var fallback = map[string]string{
	"client.rate_limit": "Zu viele Anfragen. Bitte warte einen Moment und versuche es erneut.",
	"client.validation": "Ungültige Eingabedaten.",
	"client.server":     "Server-Fehler. Bitte versuche es später erneut.",
	"client.network":    "Verbindung zum Server fehlgeschlagen. Bitte überprüfe deine Internetverbindung.",
	"client.unknown":    "Ein unerwarteter Fehler ist aufgetreten.",
	"form.honeypot":     "Etwas ist schiefgelaufen. Bitte versuche es erneut.",
	"form.rate_limit":   "Zu viele Anfragen. Bitte warte 15 Minuten.",
	"form.validation":   "Bitte überprüfe deine Eingaben.",
	"form.server":       "Etwas ist schiefgelaufen. Bitte versuche es später erneut.",
	"form.other":        "Ein Fehler ist aufgetreten. Bitte versuche es erneut.",
	"form.network":      "Verbindung fehlgeschlagen. Bitte überprüfe deine Internetverbindung.",
}

type messages struct {
	tr   Translator
	lang string
}

func (m messages) get(key string) string {
	if m.tr != nil {
		return m.tr.T(m.lang, key)
	}
	return fallback[key]
}
