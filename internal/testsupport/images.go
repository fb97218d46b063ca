package testsupport

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture images are small so pixel assertions stay readable.
const (
	FixtureWidth  = 8
	FixtureHeight = 6
)

// FixtureBounds is the rectangle of every generated frame.
var FixtureBounds = image.Rect(0, 0, FixtureWidth, FixtureHeight)

// WriteFrame writes an opaque RGB gradient frame. The encoder is chosen from
// the extension (.jpg/.jpeg or png otherwise).
func WriteFrame(t testing.TB, path string) {
	t.Helper()

	img := image.NewRGBA(FixtureBounds)
	for y := 0; y < FixtureHeight; y++ {
		for x := 0; x < FixtureWidth; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	writeImage(t, path, img)
}

// WriteMask writes a grayscale mask that is white inside rect and black
// elsewhere.
func WriteMask(t testing.TB, path string, rect image.Rectangle) {
	t.Helper()

	img := image.NewGray(FixtureBounds)
	for y := 0; y < FixtureHeight; y++ {
		for x := 0; x < FixtureWidth; x++ {
			if image.Pt(x, y).In(rect) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	writeImage(t, path, img)
}

// WriteEmpty creates a zero-byte file.
func WriteEmpty(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadImage decodes an image written by the code under test.
func ReadImage(t testing.TB, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func writeImage(t testing.TB, path string, img image.Image) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}
