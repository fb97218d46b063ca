// Package textutil provides small text helpers for output paths and
// human-facing labels.
package textutil
