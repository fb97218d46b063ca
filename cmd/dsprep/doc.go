// Package main hosts the dsprep CLI entrypoint and command graph.
//
// The Cobra command tree loads the TOML configuration, applies command-line
// overrides and hands the finalized config to internal/pipeline. Output is
// either go-pretty tables for people or JSON for scripts. Keep this package
// thin: behaviour belongs in the internal packages and is surfaced here
// through commands and flags.
package main
