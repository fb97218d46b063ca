package materialize

import (
	"path/filepath"

	"dsprep/internal/dataset"
	"dsprep/internal/textutil"
)

const (
	imagesDir = "images"
	masksDir  = "masks"
)

// PathBuilder lays out the output tree:
//
//	<root>/[partition]/[dataset]/images[/class]/<file>
//	<root>/[partition]/[dataset]/masks[/class]/<file>
//
// The partition and dataset levels can be switched off.
type PathBuilder struct {
	Root             string
	IgnorePartition  bool
	IgnoreDatasetDir bool
}

// ImageDir returns the directory for frames. class is empty outside
// classification.
func (b PathBuilder) ImageDir(p dataset.Partition, datasetName, class string) string {
	return b.dir(p, datasetName, imagesDir, class)
}

// MaskDir returns the directory for masks. class is empty in binary
// segmentation.
func (b PathBuilder) MaskDir(p dataset.Partition, datasetName, class string) string {
	return b.dir(p, datasetName, masksDir, class)
}

func (b PathBuilder) dir(p dataset.Partition, datasetName, kind, class string) string {
	parts := make([]string, 0, 5)
	parts = append(parts, b.Root)
	if !b.IgnorePartition {
		parts = append(parts, p.String())
	}
	if !b.IgnoreDatasetDir {
		parts = append(parts, textutil.SanitizePathSegment(datasetName))
	}
	parts = append(parts, kind)
	if class != "" {
		parts = append(parts, textutil.SanitizePathSegment(class))
	}
	return filepath.Join(parts...)
}
