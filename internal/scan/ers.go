package scan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
	"dsprep/internal/logging"
	"dsprep/internal/services"
)

const (
	ersSamplesDir = "samples"
	ersFramesDir  = "frames"
	ersLabelsDir  = "labels"
	ersTokenLen   = 3
)

// ERS scans the ERS endoscopy layout:
//
//	<root>/<patient>/samples/{frames,labels}
//
// With UseSeq every <root>/<patient>/<dir>/{frames,labels} is scanned
// instead of samples alone.
type ERS struct {
	Root   string
	UseSeq bool
	Logger *slog.Logger
}

// NewERS builds an ERS scanner rooted at root.
func NewERS(root string, useSeq bool, logger *slog.Logger) *ERS {
	return &ERS{
		Root:   root,
		UseSeq: useSeq,
		Logger: logging.NewComponentLogger(logger, "scan.ers"),
	}
}

// Name implements Scanner.
func (s *ERS) Name() string { return DatasetERS }

// Scan implements Scanner. Every frame is reported, including frames that
// have no mask at all; the patient directory name is the entity id.
func (s *ERS) Scan(ctx context.Context) ([]dataset.Frame, error) {
	patients, err := listVisible(s.Root, true)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, stageName, "list patients", s.Root, err)
	}

	var frames []dataset.Frame
	for _, patientDir := range patients {
		if err := checkCanceled(ctx); err != nil {
			return nil, err
		}
		dataDirs, err := s.dataDirs(patientDir)
		if err != nil {
			return nil, err
		}
		patient := filepath.Base(patientDir)
		for _, dataDir := range dataDirs {
			found, err := s.scanDataDir(ctx, patient, dataDir)
			if err != nil {
				return nil, err
			}
			frames = append(frames, found...)
		}
	}

	s.Logger.Info("ers scan complete",
		logging.String(logging.FieldDataset, DatasetERS),
		logging.Int("patients", len(patients)),
		logging.Int("frames", len(frames)),
	)
	return frames, nil
}

func (s *ERS) dataDirs(patientDir string) ([]string, error) {
	if !s.UseSeq {
		return []string{filepath.Join(patientDir, ersSamplesDir)}, nil
	}
	dirs, err := listVisible(patientDir, true)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "list sequences", patientDir, err)
	}
	return dirs, nil
}

func (s *ERS) scanDataDir(ctx context.Context, patient, dataDir string) ([]dataset.Frame, error) {
	labelsDir := filepath.Join(dataDir, ersLabelsDir)
	if info, err := os.Stat(labelsDir); err != nil || !info.IsDir() {
		s.Logger.Debug("skipping directory without labels", logging.String("dir", dataDir))
		return nil, nil
	}
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}

	framesDir := filepath.Join(dataDir, ersFramesDir)
	framePaths, err := listVisible(framesDir, false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.Logger, "labels directory has no frames", "missing_frames",
				logging.String("dir", dataDir),
				logging.String(logging.FieldErrorHint, "check the ERS directory layout"),
				logging.Alert(logging.AlertMissingData),
			)
			return nil, nil
		}
		return nil, services.Wrap(services.ErrIO, stageName, "list frames", framesDir, err)
	}
	maskPaths, err := listVisible(labelsDir, false)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "list labels", labelsDir, err)
	}
	maskNames := make([]string, len(maskPaths))
	for i, p := range maskPaths {
		maskNames[i] = filepath.Base(p)
	}

	dataDirName := filepath.Base(dataDir)
	frames := make([]dataset.Frame, 0, len(framePaths))
	for _, framePath := range framePaths {
		frameStem := stem(framePath)
		var labels []dataset.RawLabel
		for _, maskName := range matchMasks(maskNames, frameStem) {
			maskPath := filepath.Join(labelsDir, maskName)
			empty, err := fileutil.IsEmptyFile(maskPath)
			if err != nil {
				return nil, services.Wrap(services.ErrIO, stageName, "stat mask", maskPath, err)
			}
			for _, token := range maskTokens(maskName, frameStem) {
				labels = append(labels, dataset.RawLabel{Token: token, MaskPath: maskPath, Empty: empty})
			}
		}
		frames = append(frames, dataset.Frame{
			EntityID:     patient,
			Dataset:      DatasetERS,
			Path:         framePath,
			ProposedName: strings.Join([]string{patient, dataDirName, frameStem}, "_"),
			Labels:       labels,
		})
	}
	return frames, nil
}

// matchMasks returns the names in sorted that belong to the frame with the
// given stem: the name starts with the stem followed by a separator, so
// frame 1 never claims the masks of frame 10.
func matchMasks(sorted []string, frameStem string) []string {
	var out []string
	for i := sort.SearchStrings(sorted, frameStem); i < len(sorted); i++ {
		name := sorted[i]
		if !strings.HasPrefix(name, frameStem) {
			break
		}
		rest := name[len(frameStem):]
		if rest == "" || strings.ContainsRune("_.-", rune(rest[0])) {
			out = append(out, name)
		}
	}
	return out
}

// maskTokens extracts the raw label tokens of a mask name: the underscore
// separated parts after the frame stem that are exactly three characters.
func maskTokens(maskName, frameStem string) []string {
	rest := strings.TrimPrefix(stem(maskName), frameStem)
	var tokens []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(rest, "_") {
		if utf8.RuneCountInString(part) != ersTokenLen {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		tokens = append(tokens, part)
	}
	return tokens
}
