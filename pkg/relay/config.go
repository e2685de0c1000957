package relay

// Config holds the HTTP-facing settings of the relay.
type Config struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGIN" envSeparator:"," envDefault:"http://localhost:3000"`
	MaxBodyBytes   int64    `env:"MAX_BODY_BYTES" envDefault:"65536"`
	// MailLanguage is the language of the owner's notification.
	MailLanguage string `env:"MAIL_LANGUAGE" envDefault:"de"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   64 << 10,
		MailLanguage:   "de",
	}
}
