package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dsprep/internal/assemble"
	"dsprep/internal/config"
	"dsprep/internal/dataset"
	"dsprep/internal/logging"
	"dsprep/internal/manifest"
	"dsprep/internal/materialize"
	"dsprep/internal/outdir"
	"dsprep/internal/preflight"
	"dsprep/internal/services"
	"dsprep/internal/split"
)

// Option adjusts a single Run.
type Option func(*runner)

// WithProgress draws a progress bar while records are written when stderr is
// a terminal.
func WithProgress() Option {
	return func(r *runner) { r.progress = true }
}

// WithRunID replaces the generated run id.
func WithRunID(id string) Option {
	return func(r *runner) {
		if id != "" {
			r.runID = id
		}
	}
}

type runner struct {
	cfg      *config.Config
	base     *slog.Logger
	logger   *slog.Logger
	runID    string
	progress bool
}

func newRunner(cfg *config.Config, logger *slog.Logger, opts []Option) *runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &runner{
		cfg:    cfg,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run builds the dataset described by cfg into cfg.Output.Path. cfg must be
// finalized. An input that yields no records is not an error: the output
// holds empty partitions and the summary says so.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (Summary, error) {
	if cfg == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "pipeline", "run", "configuration is required", nil)
	}
	r := newRunner(cfg, logger, opts)
	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) (Summary, error) {
	started := time.Now()
	ctx = services.WithRunID(ctx, r.runID)
	runLogger := logging.WithContext(ctx, r.logger)

	sizes := r.cfg.SplitSizes()
	summary := Summary{
		RunID:        r.runID,
		TrainingType: r.cfg.Dataset.TrainingType.String(),
		Output:       r.cfg.Output.Path,
		Seed:         r.cfg.Split.Seed,
		Sizes:        sizes,
	}

	runLogger.Info("build started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("training_type", summary.TrainingType),
		logging.String("output", summary.Output),
		logging.Uint64("seed", summary.Seed),
		logging.Float64("train_size", sizes.Train),
		logging.Float64("validation_size", sizes.Validation),
		logging.Float64("test_size", sizes.Test),
	)

	if err := r.runStage(ctx, stagePreflight, func(ctx context.Context, logger *slog.Logger) error {
		results := preflight.RunAll(ctx, r.cfg)
		for _, res := range results {
			switch {
			case res.Passed:
				logger.Debug("preflight check passed",
					logging.String("check", res.Name),
					logging.String("detail", res.Detail),
					logging.String(logging.FieldEventType, "preflight_passed"),
				)
			case res.Advisory:
				logging.WarnWithContext(logger, "preflight check warning", "preflight_warning",
					logging.String("check", res.Name),
					logging.String("detail", res.Detail),
					logging.String(logging.FieldErrorHint, "free up space or choose another output path"),
					logging.String(logging.FieldImpact, "the build may fail part way through"),
				)
				summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %s", res.Name, res.Detail))
			default:
				logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
					logging.String("check", res.Name),
					logging.String("detail", res.Detail),
				)
			}
		}
		return preflight.Failures(results)
	}); err != nil {
		return summary, err
	}

	var lock *outdir.Lock
	if err := r.runStage(ctx, stageOutput, func(_ context.Context, logger *slog.Logger) error {
		var err error
		if lock, err = outdir.Acquire(r.cfg.Output.Path); err != nil {
			return err
		}
		return outdir.Prepare(r.cfg.Output.Path, r.cfg.Output.Force, logger)
	}); err != nil {
		releaseLock(lock, runLogger)
		return summary, err
	}
	defer releaseLock(lock, runLogger)

	var records []dataset.Record
	if err := r.runStage(ctx, stageAssemble, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		records, summary.Assemble, err = r.assemble(ctx, logger)
		return err
	}); err != nil {
		return summary, err
	}

	var parts split.Result
	if err := r.runStage(ctx, stageSplit, func(_ context.Context, logger *slog.Logger) error {
		parts = r.split(records, logger)
		summary.Partitions = summarizePartitions(parts)
		return nil
	}); err != nil {
		return summary, err
	}

	var written materialize.Result
	if err := r.runStage(ctx, stageMaterialize, func(ctx context.Context, logger *slog.Logger) error {
		opts, err := materialize.OptionsFromConfig(r.cfg)
		if err != nil {
			return err
		}
		opts.Progress = r.progress
		m, err := materialize.New(opts, logger)
		if err != nil {
			return err
		}
		written, err = m.Materialize(ctx, parts)
		summary.Materialize = written.Stats
		return err
	}); err != nil {
		return summary, err
	}

	if r.cfg.Output.Manifest {
		if err := r.runStage(ctx, stageManifest, func(ctx context.Context, _ *slog.Logger) error {
			path, err := r.writeManifest(ctx, started, summary, written.Entries)
			summary.Manifest = path
			return err
		}); err != nil {
			return summary, err
		}
	}

	summary.Duration = time.Since(started)
	runLogger.Info("build complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("records", summary.Records()),
		logging.Int("train", len(parts.Train)),
		logging.Int("validation", len(parts.Validation)),
		logging.Int("test", len(parts.Test)),
		logging.Int64("bytes", summary.Materialize.Bytes),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (r *runner) assemble(ctx context.Context, logger *slog.Logger) ([]dataset.Record, assemble.Stats, error) {
	sources, err := assemble.SourcesFromConfig(r.cfg, logger)
	if err != nil {
		return nil, assemble.Stats{}, err
	}
	return assemble.New(logger).Assemble(ctx, sources)
}

func (r *runner) split(records []dataset.Record, logger *slog.Logger) split.Result {
	sizes := r.cfg.SplitSizes()
	return split.New(split.Options{
		TrainPart: sizes.Train,
		ValPart:   sizes.Validation,
		Seed:      r.cfg.Split.Seed,
	}, logger).Split(records)
}

func (r *runner) writeManifest(ctx context.Context, started time.Time, summary Summary, written []materialize.Entry) (string, error) {
	store, err := manifest.Open(ctx, r.cfg.Output.Path)
	if err != nil {
		return "", services.Wrap(services.ErrIO, stageManifest, "open", r.cfg.Output.Path, err)
	}
	defer store.Close()

	run := manifest.Run{
		ID:             summary.RunID,
		CreatedAt:      started,
		TrainingType:   summary.TrainingType,
		Seed:           summary.Seed,
		TrainSize:      summary.Sizes.Train,
		ValidationSize: summary.Sizes.Validation,
		TestSize:       summary.Sizes.Test,
		CopyStrategy:   r.cfg.Output.CopyStrategy,
		BytesWritten:   summary.Materialize.Bytes,
		Duration:       time.Since(started),
	}
	for _, p := range summary.Partitions {
		switch p.Partition {
		case dataset.Train.String():
			run.TrainCount = p.Records
		case dataset.Validation.String():
			run.ValidationCount = p.Records
		case dataset.Test.String():
			run.TestCount = p.Records
		}
	}

	entries := make([]manifest.Entry, 0, len(written))
	for _, e := range written {
		entries = append(entries, manifest.Entry{
			Partition:   e.Partition.String(),
			Row:         e.Row,
			Dataset:     e.Dataset,
			Class:       e.Class,
			SourceFrame: e.SourceFrame,
			OutputFrame: relativeTo(r.cfg.Output.Path, e.OutputFrame),
			OutputMask:  relativeTo(r.cfg.Output.Path, e.OutputMask),
		})
	}
	if err := store.Record(ctx, run, entries); err != nil {
		return "", services.Wrap(services.ErrIO, stageManifest, "record", store.Path(), err)
	}
	return store.Path(), nil
}

// relativeTo expresses path relative to root so the manifest stays valid
// when the output tree is moved.
func relativeTo(root, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func releaseLock(lock *outdir.Lock, logger *slog.Logger) {
	if err := lock.Release(); err != nil {
		logging.WarnWithContext(logger, "failed to release output lock", "lock_release_failed",
			logging.String("path", lock.Path()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the lock is dropped when this process exits"),
			logging.String(logging.FieldImpact, "other runs see the output as busy until then"),
		)
	}
}
