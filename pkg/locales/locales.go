// Package locales embeds the translation files for user-facing messages.
package locales

import "embed"

//go:embed *.yaml
var FS embed.FS
