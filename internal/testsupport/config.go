package testsupport

import (
	"path/filepath"
	"testing"

	"dsprep/internal/config"
	"dsprep/internal/dataset"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a binary-seg config whose output directory lives in a
// per-test temp directory. At least one of WithERS and
// WithHyperKvasir is required. The config is finalized after options are
// applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Dataset.TrainingType = dataset.BinarySegmentation
	cfgVal.Output.Path = filepath.Join(base, "out")
	cfgVal.Output.Workers = 2
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if _, err := builder.cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return builder.cfg
}

// WithTrainingType overrides the training type.
func WithTrainingType(tt dataset.TrainingType) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.TrainingType = tt
	}
}

// WithERS points the config at an ERS tree.
func WithERS(root string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ERS.Path = root
	}
}

// WithERSMapper sets the ERS class mapper file.
func WithERSMapper(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ERS.ClassMapperPath = path
	}
}

// WithHyperKvasir points the config at a HyperKvasir tree.
func WithHyperKvasir(root string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.HyperKvasir.Path = root
	}
}

// WithSplit sets all three fractions.
func WithSplit(train, validation, test float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.TrainSize = &train
		b.cfg.Split.ValidationSize = &validation
		b.cfg.Split.TestSize = &test
	}
}

// WithCopyStrategy overrides the copy strategy.
func WithCopyStrategy(strategy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.CopyStrategy = strategy
	}
}

// WithConfig applies an arbitrary mutation before finalization.
func WithConfig(fn func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.cfg)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Output.Path)
}
