package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 95

// ErrUnsupportedFormat reports an output extension no encoder handles.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Info is what DecodeInfo learns from an image header.
type Info struct {
	Width  int
	Height int
	Format string
	Mode   Mode
}

// Bounds returns the image rectangle anchored at the origin.
func (i Info) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

// Decode reads and decodes the image at path.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeInfo reads only the header of the image at path.
func DecodeInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("decode header %s: %w", path, err)
	}
	return Info{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Mode:   ModeOfModel(cfg.ColorModel),
	}, nil
}

// CanEncode reports whether Encode supports the extension.
func CanEncode(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// OutputExt returns ext when it can be encoded and ".png" otherwise, so
// decode-only formats such as WebP still produce a readable file.
func OutputExt(ext string) string {
	if CanEncode(ext) {
		return ext
	}
	return ".png"
}

// Encode writes img to path using the encoder selected by the extension.
// The file is written to a temporary sibling and renamed into place.
func Encode(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !CanEncode(ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	switch ext {
	case ".png":
		err = png.Encode(tmp, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(tmp, img, &jpeg.Options{Quality: jpegQuality})
	case ".gif":
		err = gif.Encode(tmp, img, nil)
	case ".bmp":
		err = bmp.Encode(tmp, img)
	case ".tif", ".tiff":
		err = tiff.Encode(tmp, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
