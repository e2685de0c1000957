package relay_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/environment"
	"github.com/dmitrymomot/contactrelay/pkg/i18n"
	"github.com/dmitrymomot/contactrelay/pkg/locales"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
	"github.com/dmitrymomot/contactrelay/pkg/ratelimit"
	"github.com/dmitrymomot/contactrelay/pkg/relay"
)

var now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

var mailConfig = email.Config{
	Provider: email.ProviderSMTP,
	From:     "noreply@example.com",
	FromName: "Kontaktformular",
	To:       "owner@example.com",
	SMTPHost: "smtp-relay.brevo.com",
	SMTPPort: 587,
	SMTPUser: "owner@example.com",
	SMTPPass: "xsmtpsib-secret",
}

const validBody = `{"topic":"frage","message":"Wie läuft ein Coaching ab?","name":"Jo Müller","email":"  Jo@Example.ORG "}`

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg email.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimit.Result, error) {
	return nil, errors.New("redis: connection refused")
}
func (failingLimiter) Status(context.Context, string) (*ratelimit.Result, error) { return nil, nil }
func (failingLimiter) Reset(context.Context, string) error                       { return nil }

type fixture struct {
	handler http.Handler
	sender  *mockSender
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, opts ...relay.Option) *fixture {
	t.Helper()

	tr, err := i18n.NewTranslator(context.Background(), i18n.NewFSAdapter(locales.FS, "."))
	require.NoError(t, err)

	sender := &mockSender{}
	logs := &bytes.Buffer{}

	base := []relay.Option{
		relay.WithMailer(sender, mailConfig),
		relay.WithEnvironment(environment.Production),
		relay.WithLogger(logger.New(logger.WithOutput(logs), logger.WithFormat(logger.FormatJSON), logger.WithLevel(slog.LevelDebug))),
		relay.WithClock(func() time.Time { return now }),
	}
	srv, err := relay.New(relay.DefaultConfig(), tr, append(base, opts...)...)
	require.NoError(t, err)

	return &fixture{handler: srv.Handler(), sender: sender, logs: logs}
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:52100"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func strictLimiter(t *testing.T, limit int) ratelimit.Limiter {
	t.Helper()
	store := ratelimit.NewMemoryStore(ratelimit.WithStoreClock(func() time.Time { return now }))
	t.Cleanup(func() { _ = store.Close() })
	l, err := ratelimit.NewFixedWindow(store, limit, 15*time.Minute, ratelimit.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return l
}

func TestNew_RequiresTranslator(t *testing.T) {
	t.Parallel()

	_, err := relay.New(relay.DefaultConfig(), nil)
	assert.ErrorIs(t, err, relay.ErrNilTranslator)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(http.MethodGet, relay.PathHealth, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2025-03-14T09:30:00Z", body["timestamp"])
	assert.Equal(t, "production", body["environment"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "Endpoint nicht gefunden."}, decode(t, rec))

	rec = f.do(http.MethodGet, relay.PathSendEmail, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Methode nicht erlaubt.", body["error"])

	rec = f.do(http.MethodGet, "/nope", "", "Accept-Language", "en-US,en;q=0.9")
	assert.Equal(t, "Endpoint not found.", decode(t, rec)["error"])
}

func TestSendEmail_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var sent email.Message
	f.sender.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(email.Message) }).
		Return("<20250314.1@example.com>", nil).Once()

	rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"success": true, "messageId": "<20250314.1@example.com>"}, decode(t, rec))

	assert.Equal(t, "owner@example.com", sent.To)
	assert.Equal(t, `"Kontaktformular" <noreply@example.com>`, sent.From)
	assert.Equal(t, "jo@example.org", sent.ReplyTo)
	assert.Equal(t, "Frage von Jo Müller", sent.Subject)
	assert.Contains(t, sent.Text, "Wie läuft ein Coaching ab?")
	assert.Contains(t, sent.HTML, "Jo Müller")
	assert.Equal(t, "frage", sent.Tag)
	f.sender.AssertExpectations(t)

	assert.Contains(t, f.logs.String(), `"reply_to":"j*@example.org"`)
	assert.NotContains(t, f.logs.String(), "jo@example.org")
}

func TestSendEmail_Webinar(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
		return m.Subject == "Webinar-Buchung von Ana" &&
			strings.Contains(m.Text, "im März") &&
			strings.Contains(m.Text, "Dienstag ab 18 Uhr")
	})).Return("id-1", nil).Once()

	rec := f.do(http.MethodPost, relay.PathSendEmail,
		`{"topic":"webinar","message":"Social-Media-Strategie","name":"Ana","email":"ana@example.com","zeitraum":"im März","preferredTime":"Dienstag ab 18 Uhr"}`)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f.sender.AssertExpectations(t)
}

func TestSendEmail_Honeypot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(http.MethodPost, relay.PathSendEmail,
		`{"topic":"frage","message":"Wie läuft ein Coaching ab?","name":"Bot","email":"bot@example.com","honeypot":"http://spam.example"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"success": false, "error": "Ungültige Anfrage."}, decode(t, rec))
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEmail_InvalidBody(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	for _, body := range []string{`{"topic":`, `[]`, `"text"`} {
		rec := f.do(http.MethodPost, relay.PathSendEmail, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Ungültige Eingabedaten.", decode(t, rec)["error"], body)
	}

	req := httptest.NewRequest(http.MethodPost, relay.PathSendEmail, strings.NewReader(`{"message":"`+strings.Repeat("a", 70<<10)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEmail_ValidationDetails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(http.MethodPost, relay.PathSendEmail,
		`{"topic":"frage","message":"short","name":"Jo Müller","email":"jo@example.org"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Ungültige Eingabedaten.", body["error"])
	assert.Equal(t, []any{
		map[string]any{"field": "message", "message": "Nachricht muss mindestens 10 Zeichen lang sein."},
	}, body["details"])
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEmail_WebinarRequiresBookingFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(http.MethodPost, relay.PathSendEmail,
		`{"topic":"webinar","message":"Social-Media-Strategie","name":"Ana","email":"ana@example.com"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details, ok := decode(t, rec)["details"].([]any)
	require.True(t, ok)

	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.(map[string]any)["field"].(string))
	}
	assert.ElementsMatch(t, []string{"zeitraum", "preferredTime"}, fields)
}

func TestSendEmail_StrictLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, relay.WithLimiters(strictLimiter(t, 5), nil))
	f.sender.On("Send", mock.Anything, mock.Anything).Return("id", nil).Times(5)

	for i := range 5 {
		rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, map[string]any{
		"success": false,
		"error":   "Zu viele Anfragen. Bitte warte einen Moment und versuche es erneut.",
	}, decode(t, rec))
	assert.Equal(t, "900", rec.Header().Get(ratelimit.HeaderRetryAfter))
	assert.Equal(t, "5;w=900", rec.Header().Get(ratelimit.HeaderPolicy))
	assert.Equal(t, "0", rec.Header().Get(ratelimit.HeaderRemaining))
	f.sender.AssertNumberOfCalls(t, "Send", 5)
}

func TestSendEmail_HoneypotDoesNotCountTowardsLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, relay.WithLimiters(strictLimiter(t, 1), nil))
	f.sender.On("Send", mock.Anything, mock.Anything).Return("id", nil).Once()

	for range 3 {
		rec := f.do(http.MethodPost, relay.PathSendEmail, `{"topic":"frage","honeypot":"x"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSendEmail_LimiterFailsOpen(t *testing.T) {
	t.Parallel()

	f := newFixture(t, relay.WithLimiters(failingLimiter{}, failingLimiter{}))
	f.sender.On("Send", mock.Anything, mock.Anything).Return("id", nil).Once()

	rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, f.logs.String(), "rate limit store failed")
}

func TestSendEmail_ProviderFailuresLookAlike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		category string
	}{
		{name: "auth", err: &email.ProviderError{Provider: "smtp", Err: &textproto.Error{Code: 535, Msg: "5.7.8 Authentication failed"}}, category: "AUTHENTICATION"},
		{name: "timeout", err: &email.ProviderError{Provider: "smtp", Err: syscall.ETIMEDOUT}, category: "CONNECTION"},
		{name: "empty id", err: nil, category: "UNKNOWN"},
	}

	var bodies []string
	for _, tt := range tests {
		f := newFixture(t)
		f.sender.On("Send", mock.Anything, mock.Anything).Return("", tt.err).Once()

		rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
		require.Equal(t, http.StatusInternalServerError, rec.Code, tt.name)
		bodies = append(bodies, rec.Body.String())

		assert.Contains(t, f.logs.String(), `"category":"`+tt.category+`"`, tt.name)
		assert.NotContains(t, rec.Body.String(), "535", tt.name)
	}

	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
	assert.JSONEq(t,
		`{"success":false,"error":"Ein Fehler beim Senden der E-Mail ist aufgetreten. Bitte versuchen Sie es später erneut."}`,
		bodies[0])
}

func TestSendEmail_MailDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, relay.WithMailer(email.Disabled{Reason: errors.New("missing SMTP_PASS")}, mailConfig))

	rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Ein Fehler beim Senden der E-Mail ist aufgetreten. Bitte versuchen Sie es später erneut.", decode(t, rec)["error"])
	assert.Contains(t, f.logs.String(), "email delivery is disabled")
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendEmail_DetachedFromClientCancel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sender.On("Send", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return("id", nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, relay.PathSendEmail, strings.NewReader(validBody)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.sender.AssertExpectations(t)
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sender.On("Send", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("provider exploded")
	}).Return("", nil)

	rec := f.do(http.MethodPost, relay.PathSendEmail, validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Ein interner Server-Fehler ist aufgetreten.", decode(t, rec)["error"])
	assert.Contains(t, f.logs.String(), "panic recovered")

	rec = f.do(http.MethodGet, relay.PathHealth, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPILimit(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	api, err := ratelimit.NewFixedWindow(store, 2, time.Minute)
	require.NoError(t, err)

	f := newFixture(t, relay.WithLimiters(nil, api))

	for range 2 {
		require.Equal(t, http.StatusOK, f.do(http.MethodGet, relay.PathHealth, "").Code)
	}
	rec := f.do(http.MethodGet, relay.PathHealth, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Zu viele Anfragen. Bitte verlangsame deine Anfragen.", decode(t, rec)["error"])
	assert.NotEmpty(t, rec.Header().Get(ratelimit.HeaderRetryAfter))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, relay.PathMetrics, "").Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(http.MethodOptions, relay.PathSendEmail, "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "Content-Type",
	)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = f.do(http.MethodOptions, relay.PathSendEmail, "",
		"Origin", "https://evil.example",
		"Access-Control-Request-Method", http.MethodPost,
	)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(http.MethodGet, relay.PathHealth, "", "Origin", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.sender.On("Send", mock.Anything, mock.Anything).Return("id", nil).Once()
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, relay.PathSendEmail, validBody).Code)

	rec := f.do(http.MethodGet, relay.PathMetrics, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `contactrelay_contact_submissions_total{outcome="sent",topic="frage"} 1`)
	assert.Contains(t, body, `contactrelay_http_requests_total{method="POST",route="/api/chat/send-email",status="200"} 1`)
}
