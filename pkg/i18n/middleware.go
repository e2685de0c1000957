package i18n

import "net/http"

// maxAcceptLanguageLength caps the header before parsing.
const maxAcceptLanguageLength = 512

// Middleware negotiates the request language from Accept-Language and stores
// it in the request context for Tc.
func Middleware(t *Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Accept-Language")
			if len(header) > maxAcceptLanguageLength {
				header = header[:maxAcceptLanguageLength]
			}
			lang := t.Match(header)
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), lang)))
		})
	}
}
