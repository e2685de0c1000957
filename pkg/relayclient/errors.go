package relayclient

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
)

var (
	ErrInvalidBaseURL = errors.New("relayclient: invalid base url")
	ErrEmptyMessageID = errors.New("relayclient: relay returned no message id")
)

// Error codes of APIError.
const (
	CodeRateLimit  = "RATE_LIMIT"
	CodeValidation = "VALIDATION_ERROR"
	CodeServer     = "SERVER_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeUnknown    = "UNKNOWN_ERROR"
)

// APIError is a failed submission. Status is 0 when no response arrived.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []contact.FieldError
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relayclient: %s (status %d): %s: %v", e.Code, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("relayclient: %s (status %d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the visitor.
func (e *APIError) UserMessage() string { return e.Message }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
