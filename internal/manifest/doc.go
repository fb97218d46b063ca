// Package manifest records what a build wrote in an SQLite database that
// ships inside the output directory: one row per run with its split
// parameters and counts, and one row per written (record, class) pair.
//
// The manifest describes a finished dataset. dsprep never reads it back to
// drive a later build.
package manifest
