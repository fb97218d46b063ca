package dataset

import "fmt"

// MaskColor is the fill of a synthesized constant mask.
type MaskColor int

const (
	Black MaskColor = iota
	White
)

func (c MaskColor) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("MaskColor(%d)", int(c))
	}
}

// MaskRepresentation is either a PathMask or a SolidMask. The unexported
// marker keeps the set of variants closed.
type MaskRepresentation interface {
	isMaskRepresentation()
	String() string
}

// PathMask defers to the pixel data of a mask file.
type PathMask struct {
	Path string
}

func (PathMask) isMaskRepresentation() {}

func (m PathMask) String() string { return "path:" + m.Path }

// SolidMask is synthesized at materialization time with the frame's size.
type SolidMask struct {
	Color MaskColor
}

func (SolidMask) isMaskRepresentation() {}

func (m SolidMask) String() string { return "solid:" + m.Color.String() }

// OfPath builds a path-backed representation.
func OfPath(path string) MaskRepresentation { return PathMask{Path: path} }

// OfColor builds a synthesized constant representation.
func OfColor(color MaskColor) MaskRepresentation { return SolidMask{Color: color} }

// MergedMask is the canonical annotation of one class on one frame. When it
// holds more than one representation they are combined with a logical OR.
type MergedMask struct {
	Class           string
	Representations []MaskRepresentation
	Healthy         bool
}

// MaskPaths returns the file paths referenced by path-backed representations.
func (m MergedMask) MaskPaths() []string {
	paths := make([]string, 0, len(m.Representations))
	for _, rep := range m.Representations {
		if p, ok := rep.(PathMask); ok {
			paths = append(paths, p.Path)
		}
	}
	return paths
}
