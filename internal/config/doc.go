// Package config loads, normalizes, and validates dsprep configuration data.
//
// It supplies repository defaults, reads TOML files, expands user paths
// (including tilde shortcuts), honours DSPREP_ERS_PATH and
// DSPREP_HYPERKVASIR_PATH fallbacks, and resolves the train/validation/test
// fractions. Loading and finalizing are separate steps so the CLI can layer
// flag overrides between them.
package config
