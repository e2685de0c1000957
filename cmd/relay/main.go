// Command relay runs the contact relay HTTP service and its operator tools.
//
//	relay serve       start the HTTP API (default)
//	relay check       validate the mail configuration and verify the provider
//	relay send-test   deliver a fixed test notification
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrymomot/contactrelay/pkg/clientip"
	"github.com/dmitrymomot/contactrelay/pkg/config"
	"github.com/dmitrymomot/contactrelay/pkg/email"
	"github.com/dmitrymomot/contactrelay/pkg/environment"
	"github.com/dmitrymomot/contactrelay/pkg/httpserver"
	"github.com/dmitrymomot/contactrelay/pkg/i18n"
	"github.com/dmitrymomot/contactrelay/pkg/locales"
	"github.com/dmitrymomot/contactrelay/pkg/logger"
	"github.com/dmitrymomot/contactrelay/pkg/ratelimit"
	"github.com/dmitrymomot/contactrelay/pkg/redis"
	"github.com/dmitrymomot/contactrelay/pkg/relay"
	"github.com/dmitrymomot/contactrelay/pkg/requestid"
)

const serviceName = "contactrelay"

var errUsage = errors.New("usage: relay [serve|check|send-test] [-env-file path]")

type appConfig struct {
	Env          string   `env:"APP_ENV" envDefault:"development"`
	LogLevel     string   `env:"LOG_LEVEL"`
	ProxyHeaders []string `env:"TRUSTED_IP_HEADERS" envSeparator:","`
}

// settings is everything the subcommands read from the environment.
type settings struct {
	App       appConfig
	HTTP      httpserver.Config
	Mail      email.Config
	RateLimit ratelimit.Config
	Redis     redis.Config
	Relay     relay.Config
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	envFile := fs.String("env-file", ".env", "dotenv file loaded before the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := loadSettings(*envFile)
	if err != nil {
		return err
	}

	env := environment.Parse(s.App.Env)
	log := newLogger(s.App, env)

	tr, err := i18n.NewTranslator(ctx, i18n.NewFSAdapter(locales.FS, "."),
		i18n.WithDefaultLanguage(s.Relay.MailLanguage),
		i18n.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	switch cmd {
	case "serve":
		return serve(ctx, s, env, tr, log)
	case "check":
		return check(ctx, s, stdout)
	case "send-test":
		return sendTest(ctx, s, tr, stdout)
	default:
		return errUsage
	}
}

// loadSettings parses every section in one pass; nested structs share the
// flat variable namespace.
func loadSettings(envFile string) (settings, error) {
	var s settings
	if err := config.LoadFiles(&s, envFile); err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}

func newLogger(app appConfig, env environment.Environment) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(env, serviceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			environment.LoggerExtractor(),
		),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(app.LogLevel))
	}
	return logger.New(opts...)
}
