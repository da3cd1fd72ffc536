package testsupport

import (
	"path/filepath"
	"testing"

	"replayvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ReplayDir = filepath.Join(base, "replays")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBaseURL overrides the source URL template on the test config.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Source.BaseURL = url
	}
}

// WithNotFoundStatus overrides the source's not-found status code.
func WithNotFoundStatus(status int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Source.NotFoundStatus = status
	}
}
