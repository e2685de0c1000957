package relay

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/dmitrymomot/contactrelay/pkg/clientip"
	"github.com/dmitrymomot/contactrelay/pkg/diagnostics"
	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/environment"
	"github.com/dmitrymomot/contactrelay/pkg/i18n"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
	"github.com/dmitrymomot/contactrelay/pkg/ratelimit"
	"github.com/dmitrymomot/contactrelay/pkg/requestid"
)

// Route paths.
const (
	PathSendEmail = "/api/chat/send-email"
	PathHealth    = "/health"
	PathMetrics   = "/metrics"
)

// Server wires the relay handlers. Build it with New and mount Handler.
type Server struct {
	cfg Config
	tr  *i18n.Translator

	sender     email.Sender
	mail       email.Config
	mailErr    error
	classifier *diagnostics.Classifier

	emailLimiter ratelimit.Limiter
	apiLimiter   ratelimit.Limiter

	env      environment.Environment
	resolver *clientip.Resolver
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithMailer sets the provider and the settings used to address the
// notification. A nil sender or an email.Disabled leaves mail disabled.
func WithMailer(sender email.Sender, cfg email.Config) Option {
	return func(s *Server) {
		s.sender = sender
		s.mail = cfg
	}
}

// WithLimiters sets the strict limiter of the send endpoint and the
// lenient limiter of every route. Nil disables the respective check.
func WithLimiters(emailLimiter, apiLimiter ratelimit.Limiter) Option {
	return func(s *Server) {
		s.emailLimiter = emailLimiter
		s.apiLimiter = apiLimiter
	}
}

// WithEnvironment sets the environment reported by /health.
func WithEnvironment(env environment.Environment) Option {
	return func(s *Server) {
		s.env = env
	}
}

// WithClientIP sets the resolver for client addresses.
func WithClientIP(res *clientip.Resolver) Option {
	return func(s *Server) {
		if res != nil {
			s.resolver = res
		}
	}
}

// WithMetrics sets the collectors. Default is a private registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a relay server.
func New(cfg Config, tr *i18n.Translator, opts ...Option) (*Server, error) {
	if tr == nil {
		return nil, ErrNilTranslator
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	if cfg.MailLanguage == "" {
		cfg.MailLanguage = tr.DefaultLanguage()
	}

	s := &Server{
		cfg:      cfg,
		tr:       tr,
		env:      environment.Development,
		resolver: clientip.NewResolver(),
		logger:   logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	s.classifier = diagnostics.NewClassifier(s.mail)
	switch d := s.sender.(type) {
	case nil:
		s.mailErr = email.ErrMailDisabled
	case email.Disabled:
		s.mailErr = disabledReason(d)
	case *email.Disabled:
		s.mailErr = disabledReason(*d)
	}
	return s, nil
}

func disabledReason(d email.Disabled) error {
	if d.Reason != nil {
		return d.Reason
	}
	return email.ErrMailDisabled
}

// MailEnabled reports whether submissions can be delivered.
func (s *Server) MailEnabled() bool {
	return s.mailErr == nil
}

// Handler returns the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoverer)
	r.Use(requestid.Middleware)
	r.Use(s.resolver.Middleware)
	r.Use(environment.Middleware(s.env))
	r.Use(i18n.Middleware(s.tr))
	r.Use(s.instrument)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)
	if s.apiLimiter != nil {
		r.Use(ratelimit.Middleware(s.apiLimiter, ratelimit.ByIP,
			ratelimit.WithMiddlewareClock(s.now),
			ratelimit.WithSkipFunc(func(r *http.Request) bool { return r.URL.Path == PathMetrics }),
			ratelimit.WithOnLimitReached(func(w http.ResponseWriter, r *http.Request, _ *ratelimit.Result) {
				s.metrics.observeRejection("api")
				s.fail(w, r, http.StatusTooManyRequests, "errors.rate_limit_api")
			}),
			ratelimit.WithOnError(func(r *http.Request, err error) {
				s.logger.WarnContext(r.Context(), "rate limit store failed, request allowed",
					logger.Component("ratelimit"), logger.Error(err))
			}),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, http.StatusNotFound, "errors.not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, http.StatusMethodNotAllowed, "errors.method_not_allowed")
	})

	r.Get(PathHealth, s.handleHealth)
	r.Method(http.MethodGet, PathMetrics, s.metrics.Handler())
	r.Post(PathSendEmail, s.handleSendEmail)

	return r
}

// LogStartup writes the operator summary of the mail setup.
func (s *Server) LogStartup(ctx context.Context, addr string) {
	status := "ready"
	if !s.MailEnabled() {
		status = "disabled"
	}
	s.logger.InfoContext(ctx, "relay listening",
		slog.String("addr", addr),
		slog.String("env", s.env.String()),
		slog.Any("allowed_origins", s.cfg.AllowedOrigins),
		logger.Provider(s.mail.ProviderName()),
		slog.String("mail", status),
	)
	if !s.MailEnabled() {
		s.logger.WarnContext(ctx, "server is running but email delivery is disabled", logger.Error(s.mailErr))
	}
}
