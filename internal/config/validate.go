package config

import (
	"errors"
	"fmt"
	"strings"

	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
	"dsprep/internal/imaging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	if c.Dataset.TrainingType == dataset.TrainingUnknown {
		return fmt.Errorf("dataset.training_type is required (one of %s)", strings.Join(dataset.TrainingTypeNames(), ", "))
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.ERS.Path == "" && c.HyperKvasir.Path == "" {
		return errors.New("at least one of ers.path and hyperkvasir.path is required")
	}
	if c.ERS.ClassMapperPath != "" && c.ERS.Path == "" {
		return errors.New("ers.class_mapper_path is set but ers.path is empty")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must be set")
	}
	if _, err := fileutil.ParseStrategy(c.Output.CopyStrategy); err != nil {
		return fmt.Errorf("output.copy_strategy: %w", err)
	}
	switch c.Output.Naming {
	case NamingIndex, NamingSource:
	default:
		return fmt.Errorf("output.naming: unsupported value %q (expected %s or %s)", c.Output.Naming, NamingIndex, NamingSource)
	}
	if c.Output.Workers < 0 {
		return errors.New("output.workers must be >= 0")
	}
	return nil
}

func (c *Config) validateImage() error {
	if _, err := imaging.ParseMode(c.Image.ImgMode); err != nil {
		return fmt.Errorf("image.img_mode: %w", err)
	}
	if _, err := imaging.ParseMode(c.Image.MaskMode); err != nil {
		return fmt.Errorf("image.mask_mode: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
