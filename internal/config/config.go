package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"dsprep/internal/dataset"
)

//go:embed sample_config.toml
var sampleConfig string

// Dataset selects what kind of training data the run produces.
type Dataset struct {
	TrainingType dataset.TrainingType `toml:"training_type"`
}

// ERS contains configuration for the ERS endoscopy source.
type ERS struct {
	Path            string `toml:"path"`
	UseSeq          bool   `toml:"use_seq"`
	UseEmptyMasks   bool   `toml:"use_empty_masks"`
	ClassMapperPath string `toml:"class_mapper_path"`
}

// HyperKvasir contains configuration for the HyperKvasir source.
type HyperKvasir struct {
	Path string `toml:"path"`
}

// Split contains the requested partition fractions. A nil fraction is
// derived from the others; see ResolveSplitSizes.
type Split struct {
	TrainSize      *float64 `toml:"train_size"`
	ValidationSize *float64 `toml:"validation_size"`
	TestSize       *float64 `toml:"test_size"`
	Seed           uint64   `toml:"seed"`
}

// Output contains configuration for the materialized dataset tree.
type Output struct {
	Path              string `toml:"path"`
	Force             bool   `toml:"force"`
	IgnoreDatasetType bool   `toml:"ignore_dataset_type"`
	IgnoreDatasetName bool   `toml:"ignore_dataset_name"`
	CopyStrategy      string `toml:"copy_strategy"`
	Naming            string `toml:"naming"`
	Workers           int    `toml:"workers"`
	Manifest          bool   `toml:"manifest"`
}

// Image contains pixel conversion settings.
type Image struct {
	ImgMode            string `toml:"img_mode"`
	MaskMode           string `toml:"mask_mode"`
	InvertHealthyMasks bool   `toml:"invert_healthy_masks"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for a dsprep run.
//
// Configuration sections:
//   - Dataset: training type
//   - ERS, HyperKvasir: raw sources
//   - Split: partition fractions and seed
//   - Output: destination tree layout and copy behaviour
//   - Image: pixel mode conversion
//   - Logging: log format, level, and optional per-run log files
type Config struct {
	Dataset     Dataset     `toml:"dataset"`
	ERS         ERS         `toml:"ers"`
	HyperKvasir HyperKvasir `toml:"hyperkvasir"`
	Split       Split       `toml:"split"`
	Output      Output      `toml:"output"`
	Image       Image       `toml:"image"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates and parses a configuration file on top of Default. Values are
// not normalized or validated yet so callers can apply command-line overrides
// first; call Finalize afterwards.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	return &cfg, resolvedPath, exists, nil
}

// Finalize normalizes paths and enumerations, resolves the split fractions,
// and validates the result. It returns informational notices about settings
// that were adjusted or deserve the user's attention.
func (c *Config) Finalize() ([]string, error) {
	if err := c.normalize(); err != nil {
		return nil, err
	}
	notices := c.notices()
	if c.Dataset.TrainingType.IsClassification() {
		c.ERS.UseEmptyMasks = true
	}

	sizes, err := ResolveSplitSizes(c.Split.TrainSize, c.Split.ValidationSize, c.Split.TestSize)
	if err != nil {
		return nil, err
	}
	c.Split.TrainSize = &sizes.Train
	c.Split.ValidationSize = &sizes.Validation
	c.Split.TestSize = &sizes.Test

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return notices, nil
}

// SplitSizes returns the partition fractions. Before Finalize, missing
// fractions are reported as zero.
func (c *Config) SplitSizes() SplitSizes {
	return SplitSizes{
		Train:      deref(c.Split.TrainSize),
		Validation: deref(c.Split.ValidationSize),
		Test:       deref(c.Split.TestSize),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
