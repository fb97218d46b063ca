package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dsprep/internal/fileutil"
	"dsprep/internal/services"
	"dsprep/internal/testsupport"
)

func TestCheckReadableDirectory_OK(t *testing.T) {
	result := CheckReadableDirectory("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckReadableDirectory_NotExist(t *testing.T) {
	result := CheckReadableDirectory("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckReadableDirectory_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableDirectory("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "mapper.json")
	if err := os.WriteFile(f, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckReadableFile("mapper", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckReadableFile("mapper", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckReadableFile("mapper", filepath.Join(dir, "missing.json")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestCheckWritableParent(t *testing.T) {
	base := t.TempDir()

	existing := CheckWritableParent("out", base)
	if !existing.Passed {
		t.Fatalf("expected pass for existing dir, got: %s", existing.Detail)
	}

	nested := CheckWritableParent("out", filepath.Join(base, "a", "b"))
	if !nested.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", nested.Detail)
	}
	if !strings.Contains(nested.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", nested.Detail)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWritableParent("out", filepath.Join(file, "child")); result.Passed {
		t.Fatal("expected failure below a regular file")
	}
	if result := CheckWritableParent("out", ""); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckFreeSpaceIsAdvisory(t *testing.T) {
	dir := t.TempDir()

	ok := CheckFreeSpace("space", dir, 0)
	if !ok.Passed || !ok.Advisory {
		t.Fatalf("expected advisory pass, got %+v", ok)
	}

	low := CheckFreeSpace("space", filepath.Join(dir, "not", "yet"), ^uint64(0))
	if low.Passed {
		t.Fatal("expected failure for impossible threshold")
	}
	if !low.Advisory {
		t.Fatal("low space must be advisory")
	}
	if err := Failures([]Result{low}); err != nil {
		t.Fatalf("advisory failure should not fail the run: %v", err)
	}
}

func TestMinFreeBytes(t *testing.T) {
	if MinFreeBytes(fileutil.Duplicate) <= MinFreeBytes(fileutil.Symlink) {
		t.Fatal("duplicate should need more space than symlink")
	}
	if MinFreeBytes(fileutil.Hardlink) != MinFreeBytes(fileutil.Symlink) {
		t.Fatal("linking strategies should share a threshold")
	}
}

func TestRunAllPassesForValidConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHyperKvasir(t.TempDir()))

	results := RunAll(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected source, output and space checks, got %d: %+v", len(results), results)
	}
	if err := Failures(results); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestRunAllReportsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHyperKvasir(t.TempDir()))
	cfg.HyperKvasir.Path = filepath.Join(testsupport.BaseDir(cfg), "missing")

	err := Failures(RunAll(context.Background(), cfg))
	if err == nil {
		t.Fatal("expected failure for missing source")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "HyperKvasir source") {
		t.Fatalf("error should name the check: %v", err)
	}
}

func TestRunAllChecksMapper(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithERS(t.TempDir()))
	cfg.ERS.ClassMapperPath = filepath.Join(testsupport.BaseDir(cfg), "mapper.json")

	results := RunAll(context.Background(), cfg)
	var found bool
	for _, r := range results {
		if r.Name == "ERS class mapper" {
			found = true
			if r.Passed {
				t.Fatal("expected missing mapper to fail")
			}
		}
	}
	if !found {
		t.Fatal("mapper check missing")
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil, got %+v", results)
	}
}
