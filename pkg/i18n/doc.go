// Package i18n resolves user-facing strings from YAML translation files.
//
// Translation files are keyed by language at the top level and use nested
// maps for namespaces:
//
//	de:
//	  errors:
//	    not_found: "Endpoint nicht gefunden."
//
// Keys are addressed with dot notation and support named placeholders of the
// form %{name}:
//
//	tr, err := i18n.NewTranslator(ctx, i18n.NewFSAdapter(locales.FS, "."),
//	    i18n.WithDefaultLanguage("de"),
//	)
//	msg := tr.T("de", "contact.message.min", "min", "10")
//
// Middleware negotiates the request language from the Accept-Language header
// using golang.org/x/text/language and stores it in the request context, where
// Tc picks it up.
package i18n
