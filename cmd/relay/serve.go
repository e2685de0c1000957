package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/contactrelay/pkg/clientip"
	"github.com/dmitrymomot/contactrelay/pkg/diagnostics"
	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/environment"
	"github.com/dmitrymomot/contactrelay/pkg/httpserver"
	"github.com/dmitrymomot/contactrelay/pkg/i18n"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
	"github.com/dmitrymomot/contactrelay/pkg/ratelimit"
	"github.com/dmitrymomot/contactrelay/pkg/redis"
	"github.com/dmitrymomot/contactrelay/pkg/relay"
)

func serve(ctx context.Context, s settings, env environment.Environment, tr *i18n.Translator, log *slog.Logger) error {
	sender := newSender(ctx, s.Mail, log)

	emailLimiter, apiLimiter, closeStore, err := newLimiters(ctx, s, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := relay.New(s.Relay, tr,
		relay.WithMailer(sender, s.Mail),
		relay.WithLimiters(emailLimiter, apiLimiter),
		relay.WithEnvironment(env),
		relay.WithClientIP(clientip.NewResolver(s.App.ProxyHeaders...)),
		relay.WithLogger(log),
	)
	if err != nil {
		return err
	}

	httpSrv := httpserver.NewFromConfig(s.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithOnStart(func(addr string) { srv.LogStartup(ctx, addr) }),
	)
	return httpSrv.Run(ctx, srv.Handler())
}

// newSender validates cfg and builds the configured provider. A failed
// validation or provider construction logs the report and leaves the server
// running with mail disabled. Warnings are logged and the provider is kept.
func newSender(ctx context.Context, cfg email.Config, log *slog.Logger) email.Sender {
	log = log.With(logger.Component("email"), logger.Provider(cfg.ProviderName()))

	report := diagnostics.ValidateConfig(cfg)
	if !report.Success {
		log.ErrorContext(ctx, "email configuration is invalid, delivery disabled", slog.Any("report", report))
		return email.Disabled{Reason: fmt.Errorf("%w: %s", email.ErrInvalidConfig, report.Message)}
	}
	if len(report.Details) > 0 {
		log.WarnContext(ctx, "email configuration has warnings", slog.Any("report", report))
	}

	sender, err := email.New(ctx, cfg)
	if err != nil {
		log.ErrorContext(ctx, "email provider could not be created, delivery disabled",
			logger.Error(err),
			slog.Any("report", diagnostics.NewClassifier(cfg).Classify(err)),
		)
		return email.Disabled{Reason: err}
	}
	return sender
}

// newLimiters picks the Redis store when REDIS_URL is set and the
// in-process store otherwise.
func newLimiters(ctx context.Context, s settings, log *slog.Logger) (ratelimit.Limiter, ratelimit.Limiter, func(), error) {
	var (
		store   ratelimit.Store
		closeFn func()
	)
	if s.Redis.Enabled() {
		client, err := redis.Connect(ctx, s.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		store = ratelimit.NewRedisStore(client, serviceName)
		closeFn = func() { _ = client.Close() }
		log.InfoContext(ctx, "rate limits use redis", logger.Component("ratelimit"))
	} else {
		mem := ratelimit.NewMemoryStore()
		store = mem
		closeFn = func() { _ = mem.Close() }
	}

	emailLimiter, err := ratelimit.NewFixedWindow(store, s.RateLimit.EmailLimit, s.RateLimit.EmailWindow,
		ratelimit.WithPrefix("email"))
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("email rate limiter: %w", err)
	}
	apiLimiter, err := ratelimit.NewFixedWindow(store, s.RateLimit.APILimit, s.RateLimit.APIWindow,
		ratelimit.WithPrefix("api"))
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("api rate limiter: %w", err)
	}
	return emailLimiter, apiLimiter, closeFn, nil
}
