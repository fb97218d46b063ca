// Package outdir guards the output directory of a run: it refuses to
// overwrite existing data unless forced and keeps two runs from writing the
// same tree at once.
package outdir
