// Package config loads environment-driven settings into tagged structs.
//
// Each package declares its own struct with caarlos0/env tags; the binary
// loads them once at startup and passes values down:
//
//	var cfg struct {
//		HTTP  httpserver.Config
//		Email email.Config
//	}
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// A .env file in the working directory is read once before the first parse.
// Real environment variables take precedence over the file.
package config

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer      = errors.New("config: nil pointer")
	ErrParsingConfig   = errors.New("config: failed to parse environment")
	ErrLoadingEnvFiles = errors.New("config: failed to load env file")
)

var dotenvOnce sync.Once

// Load reads .env once per process and parses the environment into v.
func Load[T any](v *T) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return parse(v, env.Options{})
}

// LoadFiles loads the given env files before parsing. Missing files are
// skipped; other read errors are returned.
func LoadFiles[T any](v *T, files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Join(ErrLoadingEnvFiles, err)
		}
	}
	return parse(v, env.Options{})
}

// ParseMap parses v from vars instead of the process environment.
func ParseMap[T any](v *T, vars map[string]string) error {
	return parse(v, env.Options{Environment: vars})
}

func parse[T any](v *T, opts env.Options) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
