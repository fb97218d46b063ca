// Package logging assembles structured slog loggers and formatting helpers
// used across dsprep.
//
// It owns the configurable console/JSON handlers, the optional per-run JSON
// log file with retention pruning, and context-aware helpers so stage code
// can tag log lines with run IDs, stages, datasets, and partitions. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
