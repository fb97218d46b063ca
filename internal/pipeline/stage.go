package pipeline

import (
	"context"
	"log/slog"
	"time"

	"dsprep/internal/logging"
	"dsprep/internal/services"
)

const (
	stagePreflight   = "preflight"
	stageOutput      = "output"
	stageAssemble    = "assemble"
	stageSplit       = "split"
	stageMaterialize = "materialize"
	stageManifest    = "manifest"
)

// stageFunc does the work of one stage. logger carries the run and stage
// fields but no component so packages can add their own.
type stageFunc func(ctx context.Context, logger *slog.Logger) error

// runStage executes fn with stage context and uniform start, completion and
// failure logging.
func (r *runner) runStage(ctx context.Context, name string, fn stageFunc) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, r.logger)
	started := time.Now()

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx, logging.WithContext(stageCtx, r.base)); err != nil {
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.Error(err),
		)
		return err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", time.Since(started)),
	)
	return nil
}
