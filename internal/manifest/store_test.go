package manifest_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"dsprep/internal/manifest"
	"dsprep/internal/testsupport"
)

func TestRecordAndReadBack(t *testing.T) {
	dir := t.TempDir()
	store := testsupport.MustOpenManifest(t, dir)
	if store.Path() != filepath.Join(dir, manifest.FileName) {
		t.Fatalf("Path = %s", store.Path())
	}

	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := manifest.Run{
		ID:             "run-1",
		CreatedAt:      created,
		TrainingType:   "binary-seg",
		Seed:           math.MaxUint64,
		TrainSize:      0.7,
		ValidationSize: 0.2,
		TestSize:       0.1,
		TrainCount:     1,
		TestCount:      1,
		CopyStrategy:   "symlink",
		BytesWritten:   2048,
		Duration:       1500 * time.Millisecond,
	}
	entries := []manifest.Entry{
		{Partition: "train", Row: 0, Dataset: "ers", Class: "polyp", SourceFrame: "/src/a.png", OutputFrame: "/out/train/ers/images/0.png", OutputMask: "/out/train/ers/masks/0.png"},
		{Partition: "test", Row: 1, Dataset: "hyperkvasir", Class: "polyp", SourceFrame: "/src/b.jpg", OutputFrame: "/out/test/hyperkvasir/images/1.jpg"},
	}
	if err := store.Record(ctx, run, entries); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || !got.CreatedAt.Equal(created) || got.Seed != run.Seed || got.Duration != run.Duration {
		t.Fatalf("run mismatch: %+v", got)
	}
	if got.TrainSize != 0.7 || got.TrainCount != 1 || got.ValidationCount != 0 || got.BytesWritten != 2048 {
		t.Fatalf("run counts mismatch: %+v", got)
	}

	stored, err := store.Entries(ctx, run.ID)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(stored) != 2 || stored[0] != entries[0] || stored[1] != entries[1] {
		t.Fatalf("entries mismatch: %+v", stored)
	}
}

func TestRecordRequiresRunID(t *testing.T) {
	store := testsupport.MustOpenManifest(t, t.TempDir())
	if err := store.Record(context.Background(), manifest.Run{}, nil); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := manifest.Open(ctx, dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Record(ctx, manifest.Run{ID: "a", CreatedAt: time.Now()}, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenManifest(t, dir)
	runs, err := second.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "a" {
		t.Fatalf("unexpected runs after reopen: %+v", runs)
	}
}
