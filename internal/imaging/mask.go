package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"dsprep/internal/dataset"
)

// Mask is a single-channel 8-bit mask held in an OpenCV matrix anchored at
// the origin. Callers must Close it.
type Mask struct {
	mat gocv.Mat
}

// SolidMask returns a mask of bounds' size filled with c.
func SolidMask(bounds image.Rectangle, c dataset.MaskColor) *Mask {
	level := 0.0
	if c == dataset.White {
		level = 255
	}
	return &Mask{mat: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(level, 0, 0, 0), bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8U)}
}

// NewMask loads img as an 8-bit gray mask. Color images are reduced to
// luminance.
func NewMask(img image.Image) (*Mask, error) {
	if g, ok := img.(*image.Gray); ok && g.Stride == g.Rect.Dx() {
		shared, err := gocv.ImageGrayToMatGray(g)
		if err != nil {
			return nil, fmt.Errorf("gray to mat: %w", err)
		}
		defer shared.Close()
		return &Mask{mat: shared.Clone()}, nil
	}

	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer bgr.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)
	return &Mask{mat: gray}, nil
}

// Bounds returns the mask rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.mat.Cols(), m.mat.Rows())
}

// Close releases the matrix.
func (m *Mask) Close() error {
	if m == nil {
		return nil
	}
	return m.mat.Close()
}

// MergeMasks combines masks with a logical OR over gray levels. Each mask
// screens white through itself, out = out + (255-out)*m/255, so binary
// masks give their union and soft edges blend. Parts of a mask outside
// bounds are ignored; parts of bounds a mask does not cover count as black.
func MergeMasks(bounds image.Rectangle, masks ...*Mask) *Mask {
	out := SolidMask(bounds, dataset.Black)
	for _, m := range masks {
		layer := m.fit(bounds)

		room := gocv.NewMat()
		gocv.BitwiseNot(out.mat, &room)

		gain := gocv.NewMat()
		gocv.MultiplyWithParams(room, layer, &gain, 1.0/255, gocv.MatTypeCV8U)
		room.Close()
		layer.Close()

		merged := gocv.NewMat()
		gocv.Add(out.mat, gain, &merged)
		gain.Close()
		out.mat.Close()
		out.mat = merged
	}
	return out
}

// fit returns a copy of the mask cropped or padded with black to bounds.
func (m *Mask) fit(bounds image.Rectangle) gocv.Mat {
	w, h := bounds.Dx(), bounds.Dy()
	if m.mat.Cols() == w && m.mat.Rows() == h {
		return m.mat.Clone()
	}

	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8U)
	area := image.Rect(0, 0, min(w, m.mat.Cols()), min(h, m.mat.Rows()))
	if area.Empty() {
		return out
	}
	src := m.mat.Region(area)
	dst := out.Region(area)
	src.CopyTo(&dst)
	src.Close()
	dst.Close()
	return out
}

// Invert returns a new mask with every gray level flipped.
func (m *Mask) Invert() *Mask {
	out := gocv.NewMat()
	gocv.BitwiseNot(m.mat, &out)
	return &Mask{mat: out}
}

// Image renders the mask in mode. Bilevel output is thresholded; color modes
// replicate the gray level. ModeNone, ModeL and ModePalette give 8-bit gray.
func (m *Mask) Image(mode Mode) (image.Image, error) {
	if mode == ModeBilevel {
		binary := gocv.NewMat()
		defer binary.Close()
		gocv.Threshold(m.mat, &binary, bilevelThreshold-1, 255, gocv.ThresholdBinary)
		return bilevelFrom(binary), nil
	}

	img, err := m.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("mat to image: %w", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("mask decoded as %T", img)
	}
	switch mode {
	case ModeRGB:
		return toRGB(gray), nil
	case ModeRGBA:
		return toNRGBA(gray), nil
	default:
		return gray, nil
	}
}

// bilevelFrom maps a 0/255 matrix onto the two-entry bilevel palette.
func bilevelFrom(binary gocv.Mat) *image.Paletted {
	out := image.NewPaletted(image.Rect(0, 0, binary.Cols(), binary.Rows()), bilevelPalette)
	for i, v := range binary.ToBytes() {
		if v != 0 {
			out.Pix[i] = 1
		}
	}
	return out
}
