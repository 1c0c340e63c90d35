package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.LogDir = ""
	cfgVal.Workflow.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOverrides writes an override table into the temp dir and points the
// config at it.
func WithOverrides(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "overrides.json")
		WriteText(b.t, path, body)
		b.cfg.Reference.OverridesPath = path
	}
}

// WithOutletAliases writes an outlet alias YAML document and points the
// config at it.
func WithOutletAliases(body string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "outlets.yaml")
		WriteText(b.t, path, body)
		b.cfg.Reference.OutletAliasesPath = path
	}
}

// WithWorkers overrides the per-show worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Workers = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
