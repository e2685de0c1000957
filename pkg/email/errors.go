package email

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig   = errors.New("email: invalid configuration")
	ErrInvalidMessage  = errors.New("email: invalid message")
	ErrMailDisabled    = errors.New("email: mail delivery is disabled")
	ErrUnknownProvider = errors.New("email: unknown provider")
)

// ProviderError is a failed delivery attempt.
type ProviderError struct {
	Provider string
	// Code is the machine-readable failure code: an SMTP reply code such
	// as "535", "http/<status>", "postmark/<code>" or an API error name.
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString("email: ")
	b.WriteString(e.Provider)
	if e.Code != "" {
		b.WriteString(" [")
		b.WriteString(e.Code)
		b.WriteString("]")
	}
	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AsProviderError unwraps err into a *ProviderError.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func httpCode(status int) string {
	if status == 0 {
		return ""
	}
	return fmt.Sprintf("http/%d", status)
}
