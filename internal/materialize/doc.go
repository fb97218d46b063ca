// Package materialize writes split records into the output directory tree.
//
// Frames are linked or copied unless a pixel mode conversion is requested.
// Masks are placed the same way when a single mask file already fits;
// otherwise they are rendered at the frame's size, OR-merging every
// representation, and encoded as PNG. Binary segmentation writes one mask
// per frame, multilabel segmentation one per class, and classification only
// writes one frame copy per class directory.
//
// Records are independent, so they are written by a bounded worker pool.
// Partition membership and file names are fixed before any worker starts.
package materialize
