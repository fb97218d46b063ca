package testsupport

import (
	"image"
	"path/filepath"
	"strings"
	"testing"
)

// ERSMask describes one mask file written next to an ERS frame. Rect is the
// white region; Empty writes a zero-byte file instead.
type ERSMask struct {
	Name  string
	Rect  image.Rectangle
	Empty bool
}

// WriteERSFrame writes <root>/<patient>/<datadir>/frames/<frame> and the
// given masks under the sibling labels directory. The labels directory is
// created even without masks. It returns the frame path.
func WriteERSFrame(t testing.TB, root, patient, datadir, frame string, masks ...ERSMask) string {
	t.Helper()

	dir := filepath.Join(root, patient, datadir)
	framePath := filepath.Join(dir, "frames", frame)
	WriteFrame(t, framePath)

	labels := filepath.Join(dir, "labels")
	mkdirAll(t, labels)
	for _, m := range masks {
		path := filepath.Join(labels, m.Name)
		if m.Empty {
			WriteEmpty(t, path)
			continue
		}
		WriteMask(t, path, m.Rect)
	}
	return framePath
}

// WriteHyperKvasirSegmented writes a frame and its polyp mask under
// segmented-images/{images,masks}.
func WriteHyperKvasirSegmented(t testing.TB, root, name string, rect image.Rectangle) string {
	t.Helper()

	framePath := filepath.Join(root, "segmented-images", "images", name)
	WriteFrame(t, framePath)
	WriteMask(t, filepath.Join(root, "segmented-images", "masks", name), rect)
	return framePath
}

// WriteHyperKvasirLabeled writes a classification frame under
// labeled-images/<tract>/<finding>/<pathology>.
func WriteHyperKvasirLabeled(t testing.TB, root, tract, finding, pathology, name string) string {
	t.Helper()

	framePath := filepath.Join(root, "labeled-images", tract, finding, pathology, name)
	WriteFrame(t, framePath)
	return framePath
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
