package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactrelay/pkg/config"
)

type sample struct {
	Name    string        `env:"SAMPLE_NAME" envDefault:"relay"`
	Port    int           `env:"SAMPLE_PORT" envDefault:"4000"`
	Window  time.Duration `env:"SAMPLE_WINDOW" envDefault:"15m"`
	Origins []string      `env:"SAMPLE_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type required struct {
	Key string `env:"SAMPLE_REQUIRED,required"`
}

func TestParseMap(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		var cfg sample
		require.NoError(t, config.ParseMap(&cfg, map[string]string{}))
		assert.Equal(t, "relay", cfg.Name)
		assert.Equal(t, 4000, cfg.Port)
		assert.Equal(t, 15*time.Minute, cfg.Window)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Origins)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()

		var cfg sample
		require.NoError(t, config.ParseMap(&cfg, map[string]string{
			"SAMPLE_PORT":    "8080",
			"SAMPLE_ORIGINS": "https://a.example,https://b.example",
		}))
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()

		var cfg sample
		err := config.ParseMap(&cfg, map[string]string{"SAMPLE_PORT": "abc"})
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Parallel()

		var cfg required
		assert.ErrorIs(t, config.ParseMap(&cfg, map[string]string{}), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()

		var cfg *sample
		assert.ErrorIs(t, config.ParseMap(cfg, nil), config.ErrNilPointer)
	})
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SAMPLE_REQUIRED=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SAMPLE_REQUIRED") })

	var cfg required
	require.NoError(t, config.LoadFiles(&cfg, filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", cfg.Key)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")

	var cfg sample
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-env", cfg.Name)
}
