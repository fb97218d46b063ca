// Package imaging decodes, converts, merges and encodes frames and masks.
//
// Decoding covers PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding covers all of
// them except WebP; OutputExt maps decode-only formats to PNG. Masks are
// 8-bit gray OpenCV matrices (Mask) until their final conversion, so
// building this package needs cgo and OpenCV 4.
package imaging
