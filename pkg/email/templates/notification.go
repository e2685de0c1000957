package templates

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/sanitizer"
)

// Translator resolves label keys.
type Translator interface {
	T(lang, key string, args ...string) string
}

// Notification is the data shown in the owner's email.
type Notification struct {
	Submission contact.Submission
	SentAt     time.Time
}

// Rendered holds the three parts of a notification email.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

const timeLayout = "02.01.2006, 15:04 Uhr"

var berlin = mustLoadLocation("Europe/Berlin")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("templates: load location %s: %v", name, err))
	}
	return loc
}

// FormatTime renders t in German local time.
func FormatTime(t time.Time) string {
	return t.In(berlin).Format(timeLayout)
}

type row struct {
	label string
	value string
}

type view struct {
	heading   string
	rows      []row
	msgLabel  string
	message   string
	replyHint string
}

func newView(tr Translator, lang string, n Notification) view {
	s := n.Submission
	rows := []row{
		{tr.T(lang, "mail.topic"), s.Topic.Label()},
		{tr.T(lang, "mail.name"), s.Name},
		{tr.T(lang, "mail.email"), s.Email},
	}
	if s.Zeitraum != "" {
		rows = append(rows, row{tr.T(lang, "mail.zeitraum"), s.Zeitraum})
	}
	if s.PreferredTime != "" {
		rows = append(rows, row{tr.T(lang, "mail.preferred_time"), s.PreferredTime})
	}
	rows = append(rows, row{tr.T(lang, "mail.sent_at"), FormatTime(n.SentAt)})

	return view{
		heading:   tr.T(lang, "mail.heading"),
		rows:      rows,
		msgLabel:  tr.T(lang, "mail.message"),
		message:   s.Message,
		replyHint: tr.T(lang, "mail.reply_hint", "name", s.Name),
	}
}

// Subject returns "<topic label> von <name>" on a single line.
func Subject(tr Translator, lang string, s contact.Submission) string {
	return sanitizer.PreventHeaderInjection(
		tr.T(lang, "mail.subject", "topic", s.Topic.Label(), "name", s.Name),
	)
}

// Text renders the plain-text body.
func Text(tr Translator, lang string, n Notification) string {
	v := newView(tr, lang, n)

	var b strings.Builder
	b.WriteString(v.heading)
	b.WriteString("\n\n")
	for _, r := range v.rows {
		fmt.Fprintf(&b, "%s: %s\n", r.label, r.value)
	}
	fmt.Fprintf(&b, "\n%s:\n%s\n\n%s\n", v.msgLabel, v.message, v.replyHint)
	return b.String()
}

// HTML returns the HTML body component. User values are escaped by the
// template.
func HTML(tr Translator, lang string, n Notification) templ.Component {
	return notificationHTML(lang, newView(tr, lang, n))
}

// RenderNotification produces subject, text and HTML for n.
func RenderNotification(ctx context.Context, tr Translator, lang string, n Notification) (Rendered, error) {
	html, err := Render(ctx, HTML(tr, lang, n))
	if err != nil {
		return Rendered{}, fmt.Errorf("templates: render html: %w", err)
	}
	return Rendered{
		Subject: Subject(tr, lang, n.Submission),
		Text:    Text(tr, lang, n),
		HTML:    html,
	}, nil
}
