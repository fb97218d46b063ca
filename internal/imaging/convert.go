package imaging

import (
	"image"
	"image/color"
	"image/draw"
)

// bilevelThreshold splits gray levels into black and white for mode 1.
const bilevelThreshold = 128

var bilevelPalette = color.Palette{color.Gray{Y: 0}, color.Gray{Y: 255}}

// Convert returns img in the requested mode. ModeNone and ModePalette return
// img unchanged, as does a request for the mode img already has. Gray and
// bilevel targets go through Mask.
func Convert(img image.Image, mode Mode) (image.Image, error) {
	if mode == ModeNone || mode == ModePalette || ModeOf(img) == mode {
		return img, nil
	}
	switch mode {
	case ModeL, ModeBilevel:
		m, err := NewMask(img)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		return m.Image(mode)
	case ModeRGB:
		return toRGB(img), nil
	case ModeRGBA:
		return toNRGBA(img), nil
	default:
		return img, nil
	}
}

// toRGB drops alpha by keeping the unpremultiplied color channels.
func toRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return out
}

func toNRGBA(img image.Image) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
