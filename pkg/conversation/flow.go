package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/statemachine"
	"github.com/dmitrymomot/contactrelay/pkg/validator"
)

// Translator resolves bot prompts and error messages.
type Translator interface {
	T(lang, key string, args ...string) string
}

// Flow computes conversation transitions. It is immutable after creation
// and safe for concurrent use.
type Flow struct {
	tr    Translator
	lang  string
	now   func() time.Time
	newID func() string
	table *statemachine.Table[Step, Event]
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithLanguage sets the language of bot prompts. Default is "de".
func WithLanguage(lang string) FlowOption {
	return func(f *Flow) {
		if lang != "" {
			f.lang = lang
		}
	}
}

// WithClock sets the source of bubble timestamps.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// WithIDGenerator sets the source of bubble ids.
func WithIDGenerator(newID func() string) FlowOption {
	return func(f *Flow) {
		if newID != nil {
			f.newID = newID
		}
	}
}

// NewFlow creates a flow speaking through tr.
func NewFlow(tr Translator, opts ...FlowOption) *Flow {
	if tr == nil {
		panic("conversation: translator is nil")
	}
	f := &Flow{
		tr:    tr,
		lang:  "de",
		now:   time.Now,
		newID: uuid.NewString,
		table: steps(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func steps() *statemachine.Table[Step, Event] {
	return statemachine.New[Step, Event]().
		Add(StepTopicSelection, EventSubmit, StepMessageInput).
		Add(StepMessageInput, EventSubmit, StepZeitraumInput, topicIs(contact.TopicWebinar)).
		Add(StepMessageInput, EventSubmit, StepNameInput, topicIs(contact.TopicQuestion)).
		Add(StepZeitraumInput, EventSubmit, StepPreferredTimeInput).
		Add(StepPreferredTimeInput, EventSubmit, StepNameInput).
		Add(StepNameInput, EventSubmit, StepEmailInput).
		Add(StepEmailInput, EventSubmit, StepConfirmation).
		Add(StepConfirmation, EventConfirm, StepSending).
		Add(StepConfirmation, EventDecline, StepTopicSelection).
		Add(StepSending, EventDeliver, StepSuccess).
		Add(StepSending, EventFail, StepError)
}

func topicIs(topic contact.Topic) statemachine.Guard[Step, Event] {
	return func(_ context.Context, _ Step, _ Event, data any) bool {
		t, ok := data.(contact.Topic)
		return ok && t == topic
	}
}

// Start opens a conversation. A valid topic skips the topic question, as
// when the host page already offered the choice.
func (f *Flow) Start(topic contact.Topic) State {
	s := State{Step: StepTopicSelection}
	s = f.append(s, AuthorBot, f.t("chat.welcome"))
	if !topic.Valid() {
		return s
	}

	s.Form.Topic = topic
	s = f.append(s, AuthorUser, f.t("chat.topic_choice."+string(topic)))
	s = f.append(s, AuthorBot, f.t("chat.ask_message."+string(topic)))
	s.Step = StepMessageInput
	return s
}

// Reset discards s and starts over without a topic.
func (f *Flow) Reset() State {
	return f.Start("")
}

// Accept validates input for the current step. On failure the returned
// state differs from s only in LastError. On success the visitor's bubble
// is appended, the value is stored and Typing is set until Reply.
func (f *Flow) Accept(s State, input string) (State, error) {
	if s.Typing {
		return s, ErrBusy
	}
	if f.table.Terminal(s.Step) {
		return s, ErrFinished
	}
	field, ok := s.Step.Field()
	if !ok {
		return s, ErrUnexpectedStep
	}

	s = s.clone()
	var bubble string
	if field == contact.FieldTopic {
		topic, err := contact.ValidateTopic(input)
		if err != nil {
			return f.reject(s, err), err
		}
		s.Form.Topic = topic
		bubble = f.t("chat.topic_choice." + string(topic))
	} else {
		value, err := contact.ValidateField(field, input)
		if err != nil {
			return f.reject(s, err), err
		}
		setField(&s.Form, field, value)
		bubble = value
	}

	next, err := f.table.Next(context.Background(), s.Step, EventSubmit, s.Form.Topic)
	if err != nil {
		return s, errors.Join(ErrUnexpectedStep, err)
	}

	s = f.append(s, AuthorUser, bubble)
	s.LastError = ""
	s.Typing = true
	s.next = next
	return s, nil
}

// Reply lands the bot's answer to the last accepted input: it appends the
// prompt for the next step, advances the step and clears Typing. A state
// that is not waiting is returned unchanged.
func (f *Flow) Reply(s State) State {
	if !s.Typing || s.next == "" {
		return s
	}

	s = s.clone()
	from, to := s.Step, s.next

	var prompt string
	switch to {
	case StepTopicSelection:
		prompt = f.t("chat.restart")
		s.Form = contact.Submission{}
	case StepMessageInput:
		prompt = f.t("chat.ask_message." + string(s.Form.Topic))
	case StepZeitraumInput:
		prompt = f.t("chat.ask_zeitraum")
	case StepPreferredTimeInput:
		prompt = f.t("chat.ask_preferred_time")
	case StepNameInput:
		if from == StepMessageInput {
			prompt = f.t("chat.ask_name_after_question")
		} else {
			prompt = f.t("chat.ask_name")
		}
	case StepEmailInput:
		prompt = f.t("chat.ask_email")
	case StepConfirmation:
		prompt = f.Summary(s.Form)
	}

	if prompt != "" {
		s = f.append(s, AuthorBot, prompt)
	}
	s.Step = to
	s.next = ""
	s.Typing = false
	return s
}

// Confirm answers the summary. Yes appends the visitor's consent and moves
// to sending with Typing set until Delivered or Failed. No waits for Reply,
// which returns to topic-selection with an empty form.
func (f *Flow) Confirm(s State, yes bool) (State, error) {
	if s.Typing {
		return s, ErrBusy
	}
	if f.table.Terminal(s.Step) {
		return s, ErrFinished
	}

	event := EventDecline
	if yes {
		event = EventConfirm
	}
	next, err := f.table.Next(context.Background(), s.Step, event, s.Form.Topic)
	if err != nil {
		return s, errors.Join(ErrUnexpectedStep, err)
	}

	s = s.clone()
	s.LastError = ""
	s.Typing = true
	if yes {
		s = f.append(s, AuthorUser, f.t("chat.confirm"))
		s.Step = next
		return s, nil
	}
	s.next = next
	return s, nil
}

// Delivered records the relay's message id and thanks the visitor.
func (f *Flow) Delivered(s State, messageID string) State {
	next, err := f.table.Next(context.Background(), s.Step, EventDeliver, nil)
	if err != nil {
		return s
	}
	s = s.clone()
	s = f.append(s, AuthorBot, f.t("chat.success"))
	s.Step = next
	s.Typing = false
	s.MessageID = messageID
	return s
}

// Failed reports a failed submission. Errors exposing a UserMessage method
// are shown with that text.
func (f *Flow) Failed(s State, err error) State {
	next, terr := f.table.Next(context.Background(), s.Step, EventFail, nil)
	if terr != nil {
		return s
	}
	msg := userMessage(err)
	s = s.clone()
	s = f.append(s, AuthorBot, f.t("chat.failure", "error", msg))
	s.Step = next
	s.Typing = false
	s.LastError = msg
	return s
}

// Summary renders the confirmation prompt for form.
func (f *Flow) Summary(form contact.Submission) string {
	var b strings.Builder
	b.WriteString(f.t("chat.summary.intro"))
	b.WriteString("\n")

	line := func(key, value string) {
		b.WriteString("\n**")
		b.WriteString(f.t(key))
		b.WriteString(":** ")
		b.WriteString(value)
	}
	line("chat.summary.topic", f.t("contact.topic."+string(form.Topic)))
	line("chat.summary.message", form.Message)
	line("chat.summary.name", form.Name)
	line("chat.summary.email", form.Email)
	if form.Zeitraum != "" {
		line("chat.summary.zeitraum", form.Zeitraum)
	}
	if form.PreferredTime != "" {
		line("chat.summary.preferred_time", form.PreferredTime)
	}

	b.WriteString("\n\n")
	b.WriteString(f.t("chat.summary.question"))
	return b.String()
}

func (f *Flow) reject(s State, err error) State {
	if errs := validator.ExtractValidationErrors(err); len(errs) > 0 {
		s.LastError = contact.Localize(f.tr, f.lang, errs[:1])[0].Message
		return s
	}
	s.LastError = f.t("chat.unexpected_step")
	return s
}

func (f *Flow) append(s State, author Author, text string) State {
	s.Messages = append(s.Messages, Message{
		ID:        f.newID(),
		Sender:    author,
		Text:      text,
		Timestamp: f.now(),
	})
	return s
}

func (f *Flow) t(key string, args ...string) string {
	return f.tr.T(f.lang, key, args...)
}

func setField(form *contact.Submission, field, value string) {
	switch field {
	case contact.FieldMessage:
		form.Message = value
	case contact.FieldZeitraum:
		form.Zeitraum = value
	case contact.FieldPreferredTime:
		form.PreferredTime = value
	case contact.FieldName:
		form.Name = value
	case contact.FieldEmail:
		form.Email = value
	}
}

func userMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
