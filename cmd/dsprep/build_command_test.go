package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dsprep/internal/manifest"
	"dsprep/internal/pipeline"
	"dsprep/internal/services"
	"dsprep/internal/testsupport"
)

func TestBuildWritesDataset(t *testing.T) {
	env := setupCLITestEnv(t, 4, 2)

	out, _, err := runCLI(t, []string{"build", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var summary pipeline.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Records() != 8 {
		t.Fatalf("records = %d, want 8", summary.Records())
	}
	if summary.TrainingType != "binary-seg" {
		t.Fatalf("training type = %q", summary.TrainingType)
	}
	if _, err := os.Stat(filepath.Join(env.outputPath, manifest.FileName)); err != nil {
		t.Fatalf("expected manifest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.outputPath, "train", "ers", "images")); err != nil {
		t.Fatalf("expected train images: %v", err)
	}
}

func TestBuildTableOutput(t *testing.T) {
	env := setupCLITestEnv(t, 2, 1)

	out, _, err := runCLI(t, []string{"build"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	requireContains(t, out, "binary-seg")
	requireContains(t, out, "PARTITION")
	requireContains(t, out, "train")
	requireContains(t, out, "Pol")
	requireContains(t, out, "Manifest:")
}

func TestBuildFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t, 3, 2)
	other := filepath.Join(env.baseDir, "other")

	out, _, err := runCLI(t, []string{
		"build", "--json",
		"--output-path", other,
		"--training-type", "multilabel-seg",
		"--train-size", "1",
		"--path-ignore-dataset-name",
		"--copy-strategy", "duplicate",
		"--naming", "source",
		"--no-manifest",
	}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var summary pipeline.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Output != other {
		t.Fatalf("output = %q, want %q", summary.Output, other)
	}
	if summary.TrainingType != "multilabel-seg" {
		t.Fatalf("training type = %q", summary.TrainingType)
	}
	if summary.Sizes.Train != 1 || summary.Partitions[0].Records != 6 {
		t.Fatalf("expected everything in train: %+v", summary.Partitions)
	}
	if summary.Manifest != "" {
		t.Fatalf("manifest should be skipped, got %q", summary.Manifest)
	}
	frame := filepath.Join(other, "train", "images", "000_samples_0000.png")
	info, err := os.Lstat(frame)
	if err != nil {
		t.Fatalf("expected %s: %v", frame, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("duplicate strategy should not create symlinks")
	}
	mask := filepath.Join(other, "train", "masks", "pol", "000_samples_0000.png")
	if _, err := os.Stat(mask); err != nil {
		t.Fatalf("expected %s: %v", mask, err)
	}
	if _, err := os.Stat(env.outputPath); !os.IsNotExist(err) {
		t.Fatalf("configured output should be untouched, stat err=%v", err)
	}
}

func TestBuildRefusesNonEmptyOutput(t *testing.T) {
	env := setupCLITestEnv(t, 2, 1)
	testsupport.WriteFile(t, filepath.Join(env.outputPath, "keep.txt"), 3)

	_, _, err := runCLI(t, []string{"build"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"build", "--force"}, env.configPath); err != nil {
		t.Fatalf("build --force: %v", err)
	}
}

func TestBuildRejectsInvalidFlags(t *testing.T) {
	env := setupCLITestEnv(t, 1, 1)

	if _, _, err := runCLI(t, []string{"build", "--training-type", "segmentation"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown training type")
	}

	_, _, err := runCLI(t, []string{"build", "--train-size", "0.5"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for incomplete split, got %v", err)
	}
}
