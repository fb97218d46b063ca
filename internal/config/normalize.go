package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
)

func (c *Config) normalize() error {
	if err := c.normalizeSources(); err != nil {
		return err
	}
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeImage()
	return c.normalizeLogging()
}

func (c *Config) normalizeSources() error {
	var err error
	if strings.TrimSpace(c.ERS.Path) == "" {
		if value, ok := os.LookupEnv(envERSPath); ok {
			c.ERS.Path = value
		}
	}
	if strings.TrimSpace(c.HyperKvasir.Path) == "" {
		if value, ok := os.LookupEnv(envHyperKvasirPath); ok {
			c.HyperKvasir.Path = value
		}
	}
	if c.ERS.Path, err = expandPath(strings.TrimSpace(c.ERS.Path)); err != nil {
		return fmt.Errorf("ers.path: %w", err)
	}
	if c.ERS.ClassMapperPath, err = expandPath(strings.TrimSpace(c.ERS.ClassMapperPath)); err != nil {
		return fmt.Errorf("ers.class_mapper_path: %w", err)
	}
	if c.HyperKvasir.Path, err = expandPath(strings.TrimSpace(c.HyperKvasir.Path)); err != nil {
		return fmt.Errorf("hyperkvasir.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() error {
	var err error
	if strings.TrimSpace(c.Output.Path) == "" {
		c.Output.Path = defaultOutputPath
	}
	if c.Output.Path, err = expandPath(strings.TrimSpace(c.Output.Path)); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	c.Output.CopyStrategy = strings.ToLower(strings.TrimSpace(c.Output.CopyStrategy))
	if c.Output.CopyStrategy == "" {
		c.Output.CopyStrategy = string(fileutil.DefaultStrategy())
	}
	c.Output.Naming = strings.ToLower(strings.TrimSpace(c.Output.Naming))
	if c.Output.Naming == "" {
		c.Output.Naming = defaultNaming
	}
	if c.Output.Workers == 0 {
		c.Output.Workers = runtime.NumCPU()
	}
	return nil
}

func (c *Config) normalizeImage() {
	c.Image.ImgMode = strings.TrimSpace(c.Image.ImgMode)
	c.Image.MaskMode = strings.TrimSpace(c.Image.MaskMode)
}

func (c *Config) normalizeLogging() error {
	var err error
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

// notices reports settings that are adjusted or questionable but not invalid.
func (c *Config) notices() []string {
	var out []string
	tt := c.Dataset.TrainingType
	if tt.IsClassification() && !c.ERS.UseEmptyMasks {
		out = append(out, "ers.use_empty_masks is forced on for multilabel-classification")
	}
	if c.Output.CopyStrategy == string(fileutil.Symlink) {
		out = append(out, "copy strategy is symlink; converted images and synthesized masks are still written as new files")
	}
	if c.ERS.Path != "" && c.ERS.ClassMapperPath == "" {
		out = append(out, "no ERS class mapper configured; raw ERS tokens are used as class names")
	}
	if tt.IsClassification() && c.Image.MaskMode != "" {
		out = append(out, "image.mask_mode is ignored for multilabel-classification")
	}
	if c.HyperKvasir.Path != "" {
		if tt != dataset.BinarySegmentation {
			out = append(out, "HyperKvasir is intended for binary-seg; other training types are not recommended")
		}
		out = append(out, "HyperKvasir provides no patient ids; frames of one patient may land in several partitions")
	}
	return out
}
