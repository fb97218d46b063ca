// Package dataset defines the record model shared by every stage of a dsprep
// run: raw per-frame labels produced by scanners, the canonical merged masks
// produced by annotation resolution, and the partitions produced by the
// splitter.
//
// Values in this package are built once per run and treated as immutable
// afterwards; stages hand them along by value or by slice without mutating
// them.
package dataset
