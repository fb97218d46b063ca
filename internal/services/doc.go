// Package services defines shared utilities consumed by every pipeline stage.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, datasets, and
//     partitions for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration, validation, missing input, I/O) and the Hint helper
//     that turns a classification into a next step for the user.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
