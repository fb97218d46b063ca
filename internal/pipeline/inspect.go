package pipeline

import (
	"context"
	"log/slog"

	"dsprep/internal/assemble"
	"dsprep/internal/config"
	"dsprep/internal/dataset"
	"dsprep/internal/services"
)

// Inspection is what scanning and resolving the configured sources yields.
type Inspection struct {
	RunID        string             `json:"run_id"`
	TrainingType string             `json:"training_type"`
	Assemble     assemble.Stats     `json:"assemble"`
	Classes      map[string]int     `json:"classes"`
	Partitions   []PartitionSummary `json:"partitions,omitempty"`
	Records      []dataset.Record   `json:"-"`
}

// Inspect assembles the records cfg describes without writing anything.
// With withSplit the records are also partitioned and counted.
func Inspect(ctx context.Context, cfg *config.Config, logger *slog.Logger, withSplit bool, opts ...Option) (Inspection, error) {
	if cfg == nil {
		return Inspection{}, services.Wrap(services.ErrConfiguration, "pipeline", "inspect", "configuration is required", nil)
	}
	r := newRunner(cfg, logger, opts)
	ctx = services.WithRunID(ctx, r.runID)

	out := Inspection{
		RunID:        r.runID,
		TrainingType: cfg.Dataset.TrainingType.String(),
	}
	if err := r.runStage(ctx, stageAssemble, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		out.Records, out.Assemble, err = r.assemble(ctx, logger)
		return err
	}); err != nil {
		return out, err
	}
	out.Classes = assemble.ClassCounts(out.Records)

	if withSplit {
		_ = r.runStage(ctx, stageSplit, func(_ context.Context, logger *slog.Logger) error {
			out.Partitions = summarizePartitions(r.split(out.Records, logger))
			return nil
		})
	}
	return out, nil
}
