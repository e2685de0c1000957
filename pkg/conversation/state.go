package conversation

import (
	"slices"
	"time"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
)

// Step is the position in the conversation.
type Step string

const (
	StepTopicSelection     Step = "topic-selection"
	StepMessageInput       Step = "message-input"
	StepZeitraumInput      Step = "zeitraum-input"
	StepPreferredTimeInput Step = "preferred-time-input"
	StepNameInput          Step = "name-input"
	StepEmailInput         Step = "email-input"
	StepConfirmation       Step = "confirmation"
	StepSending            Step = "sending"
	StepSuccess            Step = "success"
	StepError              Step = "error"
)

// Field returns the form field collected in s, if any.
func (s Step) Field() (string, bool) {
	switch s {
	case StepTopicSelection:
		return contact.FieldTopic, true
	case StepMessageInput:
		return contact.FieldMessage, true
	case StepZeitraumInput:
		return contact.FieldZeitraum, true
	case StepPreferredTimeInput:
		return contact.FieldPreferredTime, true
	case StepNameInput:
		return contact.FieldName, true
	case StepEmailInput:
		return contact.FieldEmail, true
	default:
		return "", false
	}
}

// Event moves the conversation from one step to the next.
type Event string

const (
	EventSubmit  Event = "submit"
	EventConfirm Event = "confirm"
	EventDecline Event = "decline"
	EventDeliver Event = "deliver"
	EventFail    Event = "fail"
)

// Author is who wrote a chat bubble.
type Author string

const (
	AuthorBot  Author = "bot"
	AuthorUser Author = "user"
)

// Message is one chat bubble. Messages are never changed once appended.
type Message struct {
	ID        string    `json:"id"`
	Sender    Author    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// State is a snapshot of one conversation.
type State struct {
	Messages  []Message          `json:"messages"`
	Step      Step               `json:"step"`
	Form      contact.Submission `json:"form"`
	Typing    bool               `json:"typing"`
	LastError string             `json:"lastError,omitempty"`
	MessageID string             `json:"messageId,omitempty"`

	// next is the step Reply moves to while Typing is set.
	next Step
}

// Last returns the most recent bubble.
func (s State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Done reports whether the conversation reached success or error.
func (s State) Done() bool {
	return s.Step == StepSuccess || s.Step == StepError
}

// clone detaches the message slice so appends never touch another state.
func (s State) clone() State {
	s.Messages = slices.Clip(s.Messages)
	return s
}
