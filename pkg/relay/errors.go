package relay

import "errors"

var (
	ErrNilTranslator  = errors.New("relay: translator is required")
	ErrEmptyMessageID = errors.New("relay: provider returned an empty message id")
)
