package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/contactrelay/pkg/binder"
	"github.com/dmitrymomot/contactrelay/pkg/contact"
	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/email/templates"
	"github.com/dmitrymomot/contactrelay/pkg/i18n"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
	"github.com/dmitrymomot/contactrelay/pkg/ratelimit"
	"github.com/dmitrymomot/contactrelay/pkg/sanitizer"
	"github.com/dmitrymomot/contactrelay/pkg/validator"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Environment: s.env.String(),
	})
}

// handleSendEmail runs the submission pipeline and stops at the first
// failure: decode, honeypot, strict limit, validation, delivery.
func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.logger.With(logger.Component("send_email"))

	var req contact.Submission
	if err := binder.JSON(r, &req, s.cfg.MaxBodyBytes); err != nil {
		log.WarnContext(ctx, "invalid request body", logger.Error(err))
		s.metrics.observeSubmission("", outcomeInvalid)
		s.fail(w, r, http.StatusBadRequest, "errors.invalid_input")
		return
	}

	if req.IsBot() {
		log.WarnContext(ctx, "honeypot field was filled", logger.Topic(string(req.Topic)))
		s.metrics.observeSubmission(string(req.Topic), outcomeBot)
		s.fail(w, r, http.StatusBadRequest, "errors.invalid_request")
		return
	}

	if !s.allow(w, r) {
		s.metrics.observeSubmission(string(req.Topic), outcomeRateLimited)
		s.fail(w, r, http.StatusTooManyRequests, "errors.rate_limit_email")
		return
	}

	sub, err := contact.Normalize(req)
	if err != nil {
		if errors.Is(err, contact.ErrBotSubmission) {
			s.fail(w, r, http.StatusBadRequest, "errors.invalid_request")
			return
		}
		lang, _ := i18n.LocaleFromContext(ctx)
		details := contact.Localize(s.tr, lang, validator.ExtractValidationErrors(err))
		log.InfoContext(ctx, "submission rejected", logger.Topic(string(req.Topic)), slog.Int("fields", len(details)))
		s.metrics.observeSubmission(string(req.Topic), outcomeInvalid)
		s.fail(w, r, http.StatusBadRequest, "errors.invalid_input", details...)
		return
	}

	if !s.MailEnabled() {
		log.ErrorContext(ctx, "email delivery is disabled, check the mail configuration",
			logger.Error(s.mailErr), logger.Provider(s.mail.ProviderName()))
		s.metrics.observeSubmission(string(sub.Topic), outcomeDisabled)
		s.fail(w, r, http.StatusInternalServerError, "errors.send_failed")
		return
	}

	id, err := s.deliver(context.WithoutCancel(ctx), sub)
	if err != nil {
		s.report(ctx, log, err)
		s.metrics.observeSubmission(string(sub.Topic), outcomeFailed)
		s.fail(w, r, http.StatusInternalServerError, "errors.send_failed")
		return
	}

	log.InfoContext(ctx, "email sent",
		logger.Topic(string(sub.Topic)),
		logger.MessageID(id),
		logger.Provider(s.mail.ProviderName()),
		slog.String("reply_to", sanitizer.MaskEmail(sub.Email)),
	)
	s.metrics.observeSubmission(string(sub.Topic), outcomeSent)
	writeJSON(w, http.StatusOK, sendResponse{Success: true, MessageID: id})
}

// allow consults the strict limiter. Store failures let the request pass.
func (s *Server) allow(w http.ResponseWriter, r *http.Request) bool {
	if s.emailLimiter == nil {
		return true
	}
	key := ratelimit.ByIP(r)
	if key == "" {
		return true
	}

	res, err := s.emailLimiter.Allow(r.Context(), key)
	if err != nil {
		s.logger.WarnContext(r.Context(), "rate limit store failed, request allowed",
			logger.Component("ratelimit"), logger.Error(err))
		return true
	}
	ratelimit.SetHeaders(w, res, s.now())
	if !res.Allowed {
		s.metrics.observeRejection("email")
		return false
	}
	return true
}

// deliver renders the notification and makes exactly one provider call.
func (s *Server) deliver(ctx context.Context, sub contact.Submission) (string, error) {
	rendered, err := templates.RenderNotification(ctx, s.tr, s.cfg.MailLanguage, templates.Notification{
		Submission: sub,
		SentAt:     s.now(),
	})
	if err != nil {
		return "", err
	}

	start := s.now()
	id, err := s.sender.Send(ctx, email.Message{
		Domain:  s.mail.Domain,
		From:    s.mail.Sender(),
		To:      s.mail.To,
		ReplyTo: sub.Email,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
		Tag:     string(sub.Topic),
	})
	s.metrics.observeSend(s.durationSince(start).Seconds())
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrEmptyMessageID
	}
	return id, nil
}

// report logs a delivery failure with its diagnosis.
func (s *Server) report(ctx context.Context, log *slog.Logger, err error) {
	d := s.classifier.Classify(err)
	s.metrics.observeFailure(s.mail.ProviderName(), string(d.Category))
	log.ErrorContext(ctx, "email delivery failed",
		logger.Provider(s.mail.ProviderName()),
		logger.Error(err),
		logger.Diagnosis(d.Code, string(d.Category), d.Suggestion),
	)
}
