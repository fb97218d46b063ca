package scan

import (
	"context"
	"log/slog"
	"path/filepath"

	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
	"dsprep/internal/logging"
	"dsprep/internal/services"
)

// PolypToken is the raw token of every segmented HyperKvasir frame.
const PolypToken = "polyp"

// HyperKvasir scans the HyperKvasir dataset. In segmentation mode frames
// come from segmented-images/images paired with segmented-images/masks by
// file name. In classification mode frames come from
// labeled-images/<tract>/<finding>/<pathology> and carry the pathology
// directory name as their only token, with no mask.
type HyperKvasir struct {
	Root           string
	Classification bool
	Logger         *slog.Logger
}

// NewHyperKvasir builds a HyperKvasir scanner rooted at root.
func NewHyperKvasir(root string, classification bool, logger *slog.Logger) *HyperKvasir {
	return &HyperKvasir{
		Root:           root,
		Classification: classification,
		Logger:         logging.NewComponentLogger(logger, "scan.hyperkvasir"),
	}
}

// Name implements Scanner.
func (s *HyperKvasir) Name() string { return DatasetHyperKvasir }

// Scan implements Scanner. HyperKvasir has no patient ids, so frames carry
// no entity id.
func (s *HyperKvasir) Scan(ctx context.Context) ([]dataset.Frame, error) {
	var (
		frames []dataset.Frame
		err    error
	)
	if s.Classification {
		frames, err = s.scanLabeled(ctx)
	} else {
		frames, err = s.scanSegmented(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("hyperkvasir scan complete",
		logging.String(logging.FieldDataset, DatasetHyperKvasir),
		logging.Bool("classification", s.Classification),
		logging.Int("frames", len(frames)),
	)
	return frames, nil
}

func (s *HyperKvasir) scanSegmented(ctx context.Context) ([]dataset.Frame, error) {
	imagesDir := filepath.Join(s.Root, "segmented-images", "images")
	masksDir := filepath.Join(s.Root, "segmented-images", "masks")

	images, err := listVisible(imagesDir, false)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, stageName, "list images", imagesDir, err)
	}
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	masks, err := listVisible(masksDir, false)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, stageName, "list masks", masksDir, err)
	}
	maskByName := make(map[string]string, len(masks))
	for _, m := range masks {
		maskByName[filepath.Base(m)] = m
	}

	frames := make([]dataset.Frame, 0, len(images))
	unpaired := 0
	for _, imagePath := range images {
		maskPath, ok := maskByName[filepath.Base(imagePath)]
		if !ok {
			unpaired++
			continue
		}
		empty, err := fileutil.IsEmptyFile(maskPath)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, stageName, "stat mask", maskPath, err)
		}
		frames = append(frames, dataset.Frame{
			Dataset:      DatasetHyperKvasir,
			Path:         imagePath,
			ProposedName: stem(imagePath),
			Labels:       []dataset.RawLabel{{Token: PolypToken, MaskPath: maskPath, Empty: empty}},
		})
	}
	if unpaired > 0 {
		s.Logger.Debug("images without a mask skipped", logging.Int("count", unpaired))
	}
	return frames, nil
}

func (s *HyperKvasir) scanLabeled(ctx context.Context) ([]dataset.Frame, error) {
	labeledDir := filepath.Join(s.Root, "labeled-images")
	tracts, err := listVisible(labeledDir, true)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, stageName, "list tracts", labeledDir, err)
	}

	var frames []dataset.Frame
	for _, tract := range tracts {
		findings, err := listVisible(tract, true)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, stageName, "list findings", tract, err)
		}
		for _, finding := range findings {
			pathologies, err := listVisible(finding, true)
			if err != nil {
				return nil, services.Wrap(services.ErrIO, stageName, "list pathologies", finding, err)
			}
			for _, pathologyDir := range pathologies {
				if err := checkCanceled(ctx); err != nil {
					return nil, err
				}
				files, err := listVisible(pathologyDir, false)
				if err != nil {
					return nil, services.Wrap(services.ErrIO, stageName, "list samples", pathologyDir, err)
				}
				pathology := filepath.Base(pathologyDir)
				for _, file := range files {
					frames = append(frames, dataset.Frame{
						Dataset:      DatasetHyperKvasir,
						Path:         file,
						ProposedName: stem(file),
						Labels:       []dataset.RawLabel{{Token: pathology}},
					})
				}
			}
		}
	}
	return frames, nil
}
