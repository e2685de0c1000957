package i18n

import "errors"

var (
	ErrNilAdapter        = errors.New("i18n: adapter is nil")
	ErrFailedToParseYAML = errors.New("i18n: failed to parse YAML content")
	ErrFailedToReadFile  = errors.New("i18n: failed to read translation file")
	ErrNoTranslations    = errors.New("i18n: no translations found")
)
