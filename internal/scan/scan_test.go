package scan_test

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"reflect"
	"testing"

	"dsprep/internal/dataset"
	"dsprep/internal/logging"
	"dsprep/internal/scan"
	"dsprep/internal/services"
	"dsprep/internal/testsupport"
)

var maskRect = image.Rect(2, 2, 5, 5)

func buildERS(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	testsupport.WriteERSFrame(t, root, "p1", "samples", "000001.png",
		testsupport.ERSMask{Name: "000001_pol_1.png", Rect: maskRect},
		testsupport.ERSMask{Name: "000001_hlt.png", Empty: true},
	)
	testsupport.WriteERSFrame(t, root, "p1", "samples", "000002.png")
	testsupport.WriteERSFrame(t, root, "p1", "seq1", "000100.png",
		testsupport.ERSMask{Name: "000100_ade.png", Rect: maskRect},
	)
	testsupport.WriteERSFrame(t, root, "p2", "samples", "1.png",
		testsupport.ERSMask{Name: "1_pol.png", Rect: maskRect},
	)
	testsupport.WriteERSFrame(t, root, "p2", "samples", "10.png",
		testsupport.ERSMask{Name: "10_ade.png", Rect: maskRect},
	)
	// No labels directory: skipped entirely.
	testsupport.WriteFrame(t, filepath.Join(root, "p3", "samples", "frames", "000001.png"))
	return root
}

func framesByName(frames []dataset.Frame) map[string]dataset.Frame {
	out := make(map[string]dataset.Frame, len(frames))
	for _, f := range frames {
		out[f.ProposedName] = f
	}
	return out
}

func tokens(f dataset.Frame) []string {
	var out []string
	for _, l := range f.Labels {
		out = append(out, l.Token)
	}
	return out
}

func TestERSScanSamples(t *testing.T) {
	root := buildERS(t)
	s := scan.NewERS(root, false, logging.NewNop())

	frames, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if s.Name() != scan.DatasetERS {
		t.Fatalf("Name = %q", s.Name())
	}

	byName := framesByName(frames)
	if len(byName) != 4 {
		t.Fatalf("expected 4 frames, got %d: %v", len(byName), frames)
	}

	f1, ok := byName["p1_samples_000001"]
	if !ok {
		t.Fatalf("missing p1_samples_000001 in %v", frames)
	}
	if f1.EntityID != "p1" || f1.Dataset != scan.DatasetERS {
		t.Fatalf("unexpected frame identity: %+v", f1)
	}
	if got := tokens(f1); !reflect.DeepEqual(got, []string{"hlt", "pol"}) {
		t.Fatalf("tokens = %v", got)
	}
	if !f1.Labels[0].Empty || f1.Labels[1].Empty {
		t.Fatalf("empty flags wrong: %+v", f1.Labels)
	}
	if filepath.Base(f1.Labels[1].MaskPath) != "000001_pol_1.png" {
		t.Fatalf("mask path = %s", f1.Labels[1].MaskPath)
	}

	if f2 := byName["p1_samples_000002"]; len(f2.Labels) != 0 {
		t.Fatalf("frame without masks should have no labels: %+v", f2)
	}
	if got := tokens(byName["p2_samples_1"]); !reflect.DeepEqual(got, []string{"pol"}) {
		t.Fatalf("frame 1 must not claim masks of frame 10: %v", got)
	}
	if got := tokens(byName["p2_samples_10"]); !reflect.DeepEqual(got, []string{"ade"}) {
		t.Fatalf("frame 10 tokens = %v", got)
	}
	if _, ok := byName["p1_seq1_000100"]; ok {
		t.Fatal("sequence directories must be ignored without use_seq")
	}
}

func TestERSScanSequences(t *testing.T) {
	root := buildERS(t)
	frames, err := scan.NewERS(root, true, logging.NewNop()).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	byName := framesByName(frames)
	if _, ok := byName["p1_seq1_000100"]; !ok {
		t.Fatalf("expected sequence frame, got %v", frames)
	}
	if _, ok := byName["p1_samples_000001"]; !ok {
		t.Fatal("samples is one of the scanned directories with use_seq")
	}
	if len(byName) != 5 {
		t.Fatalf("expected 5 frames, got %d", len(byName))
	}
}

func TestERSScanMissingRoot(t *testing.T) {
	_, err := scan.NewERS(filepath.Join(t.TempDir(), "missing"), false, nil).Scan(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestERSScanCanceled(t *testing.T) {
	root := buildERS(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scan.NewERS(root, false, nil).Scan(ctx)
	if !errors.Is(err, services.ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestHyperKvasirSegmented(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteHyperKvasirSegmented(t, root, "a.jpg", maskRect)
	testsupport.WriteHyperKvasirSegmented(t, root, "c.jpg", maskRect)
	testsupport.WriteFrame(t, filepath.Join(root, "segmented-images", "images", "b.jpg"))
	testsupport.WriteEmpty(t, filepath.Join(root, "segmented-images", "images", ".DS_Store"))

	s := scan.NewHyperKvasir(root, false, logging.NewNop())
	frames, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 paired frames, got %d", len(frames))
	}
	for i, name := range []string{"a", "c"} {
		f := frames[i]
		if f.ProposedName != name || f.EntityID != "" || f.Dataset != scan.DatasetHyperKvasir {
			t.Fatalf("frame %d = %+v", i, f)
		}
		if len(f.Labels) != 1 || f.Labels[0].Token != scan.PolypToken || f.Labels[0].MaskPath == "" {
			t.Fatalf("labels = %+v", f.Labels)
		}
	}
}

func TestHyperKvasirLabeled(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteHyperKvasirLabeled(t, root, "lower-gi-tract", "pathological-findings", "polyps", "x.jpg")
	testsupport.WriteHyperKvasirLabeled(t, root, "upper-gi-tract", "anatomical-landmarks", "z-line", "y.jpg")

	frames, err := scan.NewHyperKvasir(root, true, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	want := []dataset.RawLabel{{Token: "polyps"}}
	if !reflect.DeepEqual(frames[0].Labels, want) {
		t.Fatalf("labels = %+v", frames[0].Labels)
	}
	if frames[1].Labels[0].Token != "z-line" || frames[1].Labels[0].MaskPath != "" {
		t.Fatalf("labels = %+v", frames[1].Labels)
	}
}

func TestHyperKvasirMissingLayout(t *testing.T) {
	root := t.TempDir()
	if _, err := scan.NewHyperKvasir(root, false, nil).Scan(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("segmented: expected ErrNotFound, got %v", err)
	}
	if _, err := scan.NewHyperKvasir(root, true, nil).Scan(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("labeled: expected ErrNotFound, got %v", err)
	}
}
