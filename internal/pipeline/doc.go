// Package pipeline runs a dataset build from a finalized configuration.
//
// Run executes the stages in order: preflight, output preparation, assembly,
// split, materialization and manifest. Each stage logs start and completion
// with the run id and stage name attached, and the first failing stage ends
// the run. Inspect runs assembly (and optionally the split) without touching
// the output directory.
package pipeline
