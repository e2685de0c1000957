package i18n

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when no language option is given.
const DefaultLanguage = "de"

// Translator looks up translated strings by language and dot-separated key.
// It is safe for concurrent use.
type Translator struct {
	mu            sync.RWMutex
	translations  map[string]map[string]any
	defaultLang   string
	fallbackToKey bool
	logger        *slog.Logger

	langs   []string
	ordered []string
	matcher language.Matcher
}

// NewTranslator loads translations through adapter and prepares language
// negotiation for the languages found.
func NewTranslator(ctx context.Context, adapter TranslationAdapter, options ...Option) (*Translator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	t := &Translator{
		defaultLang:   DefaultLanguage,
		fallbackToKey: true,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(t)
	}

	translations, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	for lang, tr := range translations {
		if lang == "" {
			return nil, fmt.Errorf("i18n: empty language code found")
		}
		if tr == nil {
			return nil, fmt.Errorf("i18n: nil translations map for language: %s", lang)
		}
	}

	t.translations = translations
	t.buildMatcher()
	return t, nil
}

// buildMatcher puts the default language first so it wins ties and
// unmatched requests.
func (t *Translator) buildMatcher() {
	langs := make([]string, 0, len(t.translations))
	for lang := range t.translations {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	t.langs = langs

	ordered := []string{t.defaultLang}
	for _, l := range langs {
		if l != t.defaultLang {
			ordered = append(ordered, l)
		}
	}
	t.ordered = ordered
	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tags = append(tags, language.Make(l))
	}
	t.matcher = language.NewMatcher(tags)
}

// SupportedLanguages returns the language codes that have translations.
func (t *Translator) SupportedLanguages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.langs)
}

// DefaultLanguage returns the fallback language.
func (t *Translator) DefaultLanguage() string {
	return t.defaultLang
}

// Match negotiates the best supported language for an Accept-Language header
// value. Malformed or empty headers yield the default language.
func (t *Translator) Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return t.defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.defaultLang
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No || idx >= len(t.ordered) {
		return t.defaultLang
	}
	return t.ordered[idx]
}

// HasTranslation checks if a translation exists for the given language and key.
func (t *Translator) HasTranslation(lang, key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	langMap, ok := t.translations[lang]
	if !ok {
		return false
	}
	_, ok = lookup(langMap, key)
	return ok
}

// T translates key for lang. Arguments are key/value pairs substituted into
// %{name} placeholders:
//
//	tr.T("de", "contact.name.min", "min", "2")
//
// A language without a table falls back to the default language. A missing
// key yields the key itself unless WithFallbackToKey(false) is set.
func (t *Translator) T(lang, key string, args ...string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, l := range []string{lang, t.defaultLang} {
		langMap, ok := t.translations[l]
		if !ok {
			continue
		}
		if val, ok := lookup(langMap, key); ok {
			if s, ok := val.(string); ok {
				return substitute(s, args)
			}
		}
	}

	t.logger.Warn("translation not found", slog.String("lang", lang), slog.String("key", key))
	if t.fallbackToKey {
		return substitute(key, args)
	}
	return ""
}

// Tc translates key using the language stored in ctx by Middleware or SetLocale.
func (t *Translator) Tc(ctx context.Context, key string, args ...string) string {
	lang, ok := LocaleFromContext(ctx)
	if !ok {
		lang = t.defaultLang
	}
	return t.T(lang, key, args...)
}

func lookup(m map[string]any, key string) (any, bool) {
	current := m
	parts := strings.Split(key, ".")
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		next, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

var paramRegex = regexp.MustCompile(`%\{([^}]+)\}`)

// substitute replaces %{name} placeholders from key/value args. Unknown
// placeholders are kept; an odd trailing argument is ignored.
func substitute(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return paramRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		if val, ok := params[match[2:len(match)-1]]; ok {
			return val
		}
		return match
	})
}
