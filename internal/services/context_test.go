package services_test

import (
	"context"
	"testing"

	"dsprep/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "split")
	ctx = services.WithDataset(ctx, "ers")
	ctx = services.WithPartition(ctx, "train")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "split" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if name, ok := services.DatasetFromContext(ctx); !ok || name != "ers" {
		t.Fatalf("unexpected dataset: %v %v", name, ok)
	}
	if name, ok := services.PartitionFromContext(ctx); !ok || name != "train" {
		t.Fatalf("unexpected partition: %v %v", name, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
