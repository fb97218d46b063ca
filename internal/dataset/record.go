package dataset

import (
	"fmt"
	"sort"
)

// RawLabel is one raw label token observed for a frame together with the
// mask file it came from. MaskPath is empty when the source carries no mask
// at all; Empty is set by the scanner for zero-byte mask files.
type RawLabel struct {
	Token    string
	MaskPath string
	Empty    bool
}

// HasAnnotation reports whether the label points at real pixel data.
func (l RawLabel) HasAnnotation() bool {
	return l.MaskPath != "" && !l.Empty
}

// Frame is a scanner's view of one image before resolution.
type Frame struct {
	EntityID     string
	Dataset      string
	Path         string
	ProposedName string
	Labels       []RawLabel
}

// Record is a resolved frame. EntityID is empty when the source provides no
// grouping key; the splitter clears it on the records it emits. Row is the
// record's position in canonical frame-path order, assigned by the splitter
// and used for index-based output names.
type Record struct {
	Row          int
	EntityID     string
	Dataset      string
	FramePath    string
	ProposedName string
	Masks        []MergedMask
}

// Classes returns the canonical classes of the record in sorted order.
func (r Record) Classes() []string {
	classes := make([]string, 0, len(r.Masks))
	for _, m := range r.Masks {
		classes = append(classes, m.Class)
	}
	sort.Strings(classes)
	return classes
}

// Partition names one of the three output subsets.
type Partition int

const (
	Train Partition = iota
	Validation
	Test
)

// Partitions lists the partitions in output order.
func Partitions() []Partition {
	return []Partition{Train, Validation, Test}
}

func (p Partition) String() string {
	switch p {
	case Train:
		return "train"
	case Validation:
		return "validation"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("Partition(%d)", int(p))
	}
}
