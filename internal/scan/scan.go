package scan

import (
	"context"
	"path/filepath"
	"strings"

	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
	"dsprep/internal/services"
)

// Dataset names stamped on every frame a scanner emits.
const (
	DatasetERS         = "ers"
	DatasetHyperKvasir = "hyperkvasir"
)

const stageName = "scan"

// Scanner walks one raw dataset and reports its frames with raw labels.
type Scanner interface {
	Name() string
	Scan(ctx context.Context) ([]dataset.Frame, error)
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrCanceled, stageName, "walk", "scan interrupted", err)
	}
	return nil
}

// listVisible returns sorted subdirectories or files of dir, skipping hidden
// entries such as .DS_Store.
func listVisible(dir string, dirs bool) ([]string, error) {
	var (
		paths []string
		err   error
	)
	if dirs {
		paths, err = fileutil.ListDirs(dir)
	} else {
		paths, err = fileutil.ListFiles(dir)
	}
	if err != nil {
		return nil, err
	}
	out := paths[:0]
	for _, p := range paths {
		if strings.HasPrefix(filepath.Base(p), ".") {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
