package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Mode names a pixel layout using the conventional single-token names:
// L (8-bit gray), RGB, RGBA, 1 (bilevel) and P (palette, detect only).
type Mode string

const (
	ModeNone    Mode = ""
	ModeL       Mode = "L"
	ModeRGB     Mode = "RGB"
	ModeRGBA    Mode = "RGBA"
	ModeBilevel Mode = "1"
	ModePalette Mode = "P"
)

// Modes lists the modes an image can be converted into.
func Modes() []Mode {
	return []Mode{ModeL, ModeRGB, ModeRGBA, ModeBilevel}
}

// ParseMode validates a textual mode. An empty value means "keep as is".
func ParseMode(value string) (Mode, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ModeNone, nil
	}
	for _, m := range Modes() {
		if strings.EqualFold(string(m), trimmed) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unsupported image mode %q (expected L, RGB, RGBA or 1)", value)
}

// ModeOf reports the mode of a decoded image.
func ModeOf(img image.Image) Mode {
	switch im := img.(type) {
	case *image.Gray, *image.Gray16:
		return ModeL
	case *image.Paletted:
		if isBilevelPalette(im.Palette) {
			return ModeBilevel
		}
		return ModePalette
	case *image.NRGBA, *image.NRGBA64:
		return ModeRGBA
	case *image.RGBA:
		if im.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	case *image.RGBA64:
		if im.Opaque() {
			return ModeRGB
		}
		return ModeRGBA
	default:
		return ModeRGB
	}
}

// ModeOfModel reports the mode implied by a decoder's color model, which is
// available from image.DecodeConfig without decoding pixels. Opacity is not
// known at that point, so RGBAModel reports RGB.
func ModeOfModel(model color.Model) Mode {
	if p, ok := model.(color.Palette); ok {
		if isBilevelPalette(p) {
			return ModeBilevel
		}
		return ModePalette
	}
	switch model {
	case color.GrayModel, color.Gray16Model:
		return ModeL
	case color.NRGBAModel, color.NRGBA64Model:
		return ModeRGBA
	default:
		return ModeRGB
	}
}

func isBilevelPalette(p color.Palette) bool {
	if len(p) != 2 {
		return false
	}
	lo := color.GrayModel.Convert(p[0]).(color.Gray).Y
	hi := color.GrayModel.Convert(p[1]).(color.Gray).Y
	return lo == 0 && hi == 255
}
