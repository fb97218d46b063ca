// Package assemble turns raw dataset sources into one collection of
// resolved records ready for splitting.
package assemble
