// Package scan walks raw dataset trees and reports frames with their raw
// label tokens and candidate mask files.
//
// Scanners do all filesystem inspection up front, including detecting
// zero-byte masks, so annotation resolution stays free of I/O. Listings are
// sorted and the context is checked between directories.
package scan
