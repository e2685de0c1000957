// Package logger builds slog loggers for the relay.
//
// New assembles a JSON or text handler, static attributes and a decorator
// that copies request-scoped values (request id, client address) from the
// context into every record:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "contactrelay"),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "mail sent", logger.Provider("mailgun"), logger.MessageID(id))
//
// The attribute helpers keep key names consistent across packages.
package logger
