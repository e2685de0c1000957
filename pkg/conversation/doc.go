// Package conversation drives the chat-style contact widget.
//
// Flow holds the pure transitions: every method takes a State and returns a
// new one, so a UI can keep states in whatever store it likes. Session wraps
// a Flow with a mutex, the typing pause between a user bubble and the bot's
// answer, and the call to the relay once the visitor confirms.
//
//	client, err := relayclient.New("https://relay.example.com")
//	if err != nil {
//		return err
//	}
//	s := conversation.NewSession(conversation.NewFlow(translator), client)
//	defer s.Close()
//
//	_ = s.Submit("frage")
//	s.Settle()
//	_ = s.Submit("Wie buche ich ein Coaching?")
//
// The step graph is:
//
//	topic-selection → message-input → zeitraum-input → preferred-time-input → name-input (webinar)
//	topic-selection → message-input → name-input (frage)
//	name-input → email-input → confirmation → sending → success | error
//
// Declining in confirmation returns to topic-selection with the form
// cleared. The success and error steps are left only through Reset.
package conversation
