package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/diagnostics"
	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/email/templates"
	"github.com/dmitrymomot/contactrelay/pkg/i18n"
	"github.com/dmitrymomot/contactrelay/pkg/redis"
)

// errCheckFailed makes the process exit non-zero after the report was printed.
var errCheckFailed = errors.New("mail check failed")

const verifyTimeout = 30 * time.Second

func check(ctx context.Context, s settings, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	res := diagnostics.ValidateConfig(s.Mail)
	if res.Success {
		if len(res.Details) > 0 {
			fmt.Fprint(out, diagnostics.Format(res))
		}
		sender, err := email.New(ctx, s.Mail)
		if err != nil {
			res = diagnostics.NewClassifier(s.Mail).Classify(err)
		} else {
			res = diagnostics.Diagnose(ctx, s.Mail, sender)
		}
	}

	fmt.Fprintln(out, diagnostics.Format(res))

	storeOK := checkStore(ctx, s.Redis, out)
	if !res.Success || !storeOK {
		return errCheckFailed
	}
	return nil
}

// checkStore pings the rate-limit store when REDIS_URL is set. The
// in-process store needs no check.
func checkStore(ctx context.Context, cfg redis.Config, out io.Writer) bool {
	if !cfg.Enabled() {
		fmt.Fprintln(out, "rate limit store: memory")
		return true
	}

	client, err := redis.Connect(ctx, cfg)
	if err == nil {
		defer client.Close()
		err = redis.Healthcheck(client)(ctx)
	}
	if err != nil {
		fmt.Fprintf(out, "rate limit store: redis unavailable: %v\n", err)
		return false
	}
	fmt.Fprintln(out, "rate limit store: redis ok")
	return true
}

// testSubmission is the fixed payload of send-test.
var testSubmission = contact.Submission{
	Topic:   contact.TopicQuestion,
	Message: "Dies ist eine Testnachricht des Kontaktformulars.",
	Name:    "Relay Test",
	Email:   "test@example.com",
}

func sendTest(ctx context.Context, s settings, tr *i18n.Translator, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	if res := diagnostics.ValidateConfig(s.Mail); !res.Success {
		fmt.Fprint(out, diagnostics.Format(res))
		return errCheckFailed
	}
	sender, err := email.New(ctx, s.Mail)
	if err != nil {
		return err
	}

	rendered, err := templates.RenderNotification(ctx, tr, s.Relay.MailLanguage, templates.Notification{
		Submission: testSubmission,
		SentAt:     time.Now(),
	})
	if err != nil {
		return err
	}

	id, err := sender.Send(ctx, email.Message{
		Domain:  s.Mail.Domain,
		From:    s.Mail.Sender(),
		To:      s.Mail.To,
		ReplyTo: testSubmission.Email,
		Subject: "[Test] " + rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
		Tag:     "test",
	})
	if err != nil {
		res := diagnostics.NewClassifier(s.Mail).Classify(err)
		fmt.Fprint(out, diagnostics.Format(res))
		return errCheckFailed
	}

	fmt.Fprintf(out, "test email sent to %s (id %s)\n", s.Mail.To, id)
	return nil
}
