package ratelimit

import "time"

// Config holds the two limits applied by the relay: a strict one for the
// mail endpoint and a lenient one for every route.
type Config struct {
	EmailLimit  int           `env:"RATE_LIMIT_EMAIL_MAX" envDefault:"5"`
	EmailWindow time.Duration `env:"RATE_LIMIT_EMAIL_WINDOW" envDefault:"15m"`
	APILimit    int           `env:"RATE_LIMIT_API_MAX" envDefault:"30"`
	APIWindow   time.Duration `env:"RATE_LIMIT_API_WINDOW" envDefault:"1m"`
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		EmailLimit:  5,
		EmailWindow: 15 * time.Minute,
		APILimit:    30,
		APIWindow:   time.Minute,
	}
}
