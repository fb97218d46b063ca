// Package resolve turns the raw label tokens and mask files observed for a
// frame into conflict-free canonical masks.
//
// Resolution is mode dependent. Outside multilabel classification a mask file
// that two tokens map to different class sets is dropped, since one file
// cannot stand for two meanings. Zero-byte or missing masks are admitted only
// when empty masks are enabled or the class is healthy. In binary
// segmentation every non-positive class collapses to a single black solid
// mask. Several files for one class are kept side by side and combined with a
// logical OR when written.
package resolve
