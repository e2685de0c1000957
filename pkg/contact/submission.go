package contact

import (
	"errors"

	"github.com/dmitrymomot/contactrelay/pkg/validator"
)

// ErrBotSubmission marks a request whose hidden trap field was filled in.
// Callers must answer it with a generic error.
var ErrBotSubmission = errors.New("contact: invalid request")

// Submission is the payload posted by the widget to the relay.
type Submission struct {
	Topic         Topic  `json:"topic"`
	Message       string `json:"message"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Zeitraum      string `json:"zeitraum,omitempty"`
	PreferredTime string `json:"preferredTime,omitempty"`
	Honeypot      string `json:"honeypot,omitempty"`
}

// IsBot reports whether the trap field carries content after sanitization.
func (s Submission) IsBot() bool {
	return SanitizeField(FieldHoneypot, s.Honeypot) != ""
}

// Normalize validates every field required by the submission's topic and
// returns the sanitized copy. Booking fields are cleared for topics that do
// not collect them. The error is ErrBotSubmission for filled trap fields,
// otherwise validator.ValidationErrors listing one entry per failing field.
func Normalize(s Submission) (Submission, error) {
	if s.IsBot() {
		return Submission{}, ErrBotSubmission
	}

	var (
		out  Submission
		errs validator.ValidationErrors
	)

	collect := func(field, value string) string {
		v, err := ValidateField(field, value)
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			errs = append(errs, ve...)
		}
		return v
	}

	topic, err := ValidateTopic(string(s.Topic))
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		errs = append(errs, ve...)
	}
	out.Topic = topic

	out.Message = collect(FieldMessage, s.Message)
	out.Name = collect(FieldName, s.Name)
	out.Email = collect(FieldEmail, s.Email)

	if topic.RequiresBooking() {
		out.Zeitraum = collect(FieldZeitraum, s.Zeitraum)
		out.PreferredTime = collect(FieldPreferredTime, s.PreferredTime)
	}

	if !errs.IsEmpty() {
		return Submission{}, errs
	}
	return out, nil
}
