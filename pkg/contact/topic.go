package contact

// Topic is the subject a visitor picks before writing a message.
type Topic string

const (
	TopicQuestion Topic = "frage"
	TopicWebinar  Topic = "webinar"
)

// Topics lists the accepted topics in display order.
func Topics() []Topic {
	return []Topic{TopicQuestion, TopicWebinar}
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	return t == TopicQuestion || t == TopicWebinar
}

// Label returns the German label used in notification subjects and summaries.
func (t Topic) Label() string {
	switch t {
	case TopicQuestion:
		return "Frage"
	case TopicWebinar:
		return "Webinar-Buchung"
	default:
		return string(t)
	}
}

// RequiresBooking reports whether the topic collects scheduling fields.
func (t Topic) RequiresBooking() bool {
	return t == TopicWebinar
}
