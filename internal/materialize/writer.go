package materialize

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
	"dsprep/internal/imaging"
)

// written describes one output file.
type written struct {
	Path      string
	Bytes     int64
	Converted bool
}

// imageWriter places frames and masks in the output tree, converting pixel
// modes when asked to.
type imageWriter struct {
	Strategy fileutil.Strategy
	ImgMode  imaging.Mode
	MaskMode imaging.Mode
}

// frameRef caches the header of the frame a record's masks are sized after.
type frameRef struct {
	path string
	info *imaging.Info
}

func (f *frameRef) Info() (imaging.Info, error) {
	if f.info == nil {
		info, err := imaging.DecodeInfo(f.path)
		if err != nil {
			return imaging.Info{}, err
		}
		f.info = &info
	}
	return *f.info, nil
}

// writeFrame writes the frame at src as dir/name with the source extension,
// or with an encodable extension when it has to be converted.
func (w *imageWriter) writeFrame(src, dir, name string) (written, error) {
	return w.placeOrConvert(src, dir, name, w.ImgMode)
}

// writeMask writes the OR-combination of reps as dir/name. A single
// non-empty mask file in the wanted mode is placed like a frame; everything
// else is rendered at the frame's size and encoded as PNG. invert flips the
// rendered mask.
func (w *imageWriter) writeMask(reps []dataset.MaskRepresentation, invert bool, frame *frameRef, dir, name string) (written, error) {
	if len(reps) == 0 {
		return written{}, errors.New("no mask representation to write")
	}
	if len(reps) == 1 && !invert {
		if pm, ok := reps[0].(dataset.PathMask); ok {
			empty, err := fileutil.IsEmptyFile(pm.Path)
			if err != nil {
				return written{}, fmt.Errorf("stat mask: %w", err)
			}
			if !empty {
				return w.placeOrConvert(pm.Path, dir, name, w.MaskMode)
			}
		}
	}

	info, err := frame.Info()
	if err != nil {
		return written{}, err
	}
	bounds := info.Bounds()
	layers := make([]*imaging.Mask, 0, len(reps))
	defer func() {
		for _, layer := range layers {
			_ = layer.Close()
		}
	}()
	for _, rep := range reps {
		layer, err := renderLayer(rep, bounds)
		if err != nil {
			return written{}, err
		}
		layers = append(layers, layer)
	}

	mask := imaging.MergeMasks(bounds, layers...)
	defer mask.Close()
	if invert {
		inverted := mask.Invert()
		defer inverted.Close()
		mask = inverted
	}
	mode := w.MaskMode
	if mode == imaging.ModeNone {
		mode = info.Mode
	}
	img, err := mask.Image(mode)
	if err != nil {
		return written{}, err
	}
	return encode(img, filepath.Join(dir, name+".png"))
}

func renderLayer(rep dataset.MaskRepresentation, bounds image.Rectangle) (*imaging.Mask, error) {
	switch r := rep.(type) {
	case dataset.SolidMask:
		return imaging.SolidMask(bounds, r.Color), nil
	case dataset.PathMask:
		empty, err := fileutil.IsEmptyFile(r.Path)
		if err != nil {
			return nil, fmt.Errorf("stat mask: %w", err)
		}
		if empty {
			return imaging.SolidMask(bounds, dataset.White), nil
		}
		img, err := imaging.Decode(r.Path)
		if err != nil {
			return nil, err
		}
		return imaging.NewMask(img)
	default:
		return nil, fmt.Errorf("unsupported mask representation %T", rep)
	}
}

func (w *imageWriter) placeOrConvert(src, dir, name string, mode imaging.Mode) (written, error) {
	ext := filepath.Ext(src)
	if mode != imaging.ModeNone {
		info, err := imaging.DecodeInfo(src)
		if err != nil {
			return written{}, err
		}
		if info.Mode != mode {
			img, err := imaging.Decode(src)
			if err != nil {
				return written{}, err
			}
			converted, err := imaging.Convert(img, mode)
			if err != nil {
				return written{}, err
			}
			return encode(converted, filepath.Join(dir, name+imaging.OutputExt(ext)))
		}
	}

	dst := filepath.Join(dir, name+ext)
	if err := w.Strategy.Place(src, dst); err != nil {
		return written{}, fmt.Errorf("%s %s: %w", w.Strategy, src, err)
	}
	out := written{Path: dst}
	if w.Strategy == fileutil.Duplicate {
		if info, err := os.Stat(dst); err == nil {
			out.Bytes = info.Size()
		}
	}
	return out, nil
}

func encode(img image.Image, dst string) (written, error) {
	if err := imaging.Encode(dst, img); err != nil {
		return written{}, err
	}
	out := written{Path: dst, Converted: true}
	if info, err := os.Stat(dst); err == nil {
		out.Bytes = info.Size()
	}
	return out, nil
}
