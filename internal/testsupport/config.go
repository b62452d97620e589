package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"livestage/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test:
// a root tree, two destinations, a log dir, and an in-temp hash cache.
// Dry-run stays on unless an option turns it off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RootDir = filepath.Join(base, "root")
	if err := os.MkdirAll(cfg.Paths.RootDir, 0o755); err != nil {
		t.Fatalf("create test root: %v", err)
	}
	cfg.Paths.PairsDir = filepath.Join(base, "pairs")
	cfg.Paths.LeftoversDir = filepath.Join(base, "leftovers")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.HashCache.Enabled = false
	cfg.HashCache.Path = filepath.Join(base, "hashes.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithApply turns dry-run off.
func WithApply() ConfigOption {
	return func(c *config.Config) { c.Staging.DryRun = false }
}

// WithCopyMode switches the transfer mode to copy.
func WithCopyMode() ConfigOption {
	return func(c *config.Config) { c.Staging.TransferMode = "copy" }
}

// WithDedupe enables leftover deduplication.
func WithDedupe() ConfigOption {
	return func(c *config.Config) { c.Staging.DedupeLeftovers = true }
}

// WithMaxVideoSeconds sets the cross-directory duration threshold.
func WithMaxVideoSeconds(seconds float64) ConfigOption {
	return func(c *config.Config) { c.Matching.MaxVideoSeconds = seconds }
}

// WithHashCache enables the persistent fingerprint cache.
func WithHashCache() ConfigOption {
	return func(c *config.Config) { c.HashCache.Enabled = true }
}
