package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "nonexistent")
	dst := filepath.Join(dir, "dst.bin")

	err := CopyFileVerified(src, dst)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestIsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.png")
	full := filepath.Join(dir, "full.png")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := IsEmptyFile(empty); err != nil || !ok {
		t.Fatalf("IsEmptyFile(empty) = %v, %v", ok, err)
	}
	if ok, err := IsEmptyFile(full); err != nil || ok {
		t.Fatalf("IsEmptyFile(full) = %v, %v", ok, err)
	}
	if _, err := IsEmptyFile(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestIsDirEmpty(t *testing.T) {
	dir := t.TempDir()
	if ok, err := IsDirEmpty(dir); err != nil || !ok {
		t.Fatalf("fresh dir: %v, %v", ok, err)
	}
	if ok, err := IsDirEmpty(filepath.Join(dir, "missing")); err != nil || !ok {
		t.Fatalf("missing dir: %v, %v", ok, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "f"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := IsDirEmpty(dir); err != nil || ok {
		t.Fatalf("populated dir: %v, %v", ok, err)
	}
}

func TestListDirsAndFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "a"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"z.png", "y.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dirs, err := ListDirs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || filepath.Base(dirs[0]) != "a" || filepath.Base(dirs[1]) != "b" {
		t.Fatalf("ListDirs = %v", dirs)
	}
	files, err := ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "y.png" || filepath.Base(files[1]) != "z.png" {
		t.Fatalf("ListFiles = %v", files)
	}
}

func TestStrategyPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	if err := os.WriteFile(src, []byte("pixels"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, s := range Strategies() {
		dst := filepath.Join(dir, string(s)+".png")
		if err := s.Place(src, dst); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatalf("%s: read: %v", s, err)
		}
		if string(got) != "pixels" {
			t.Fatalf("%s: content %q", s, got)
		}
	}

	info, err := os.Lstat(filepath.Join(dir, "symlink.png"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Fatal("expected symlink")
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(" Duplicate "); err != nil || s != Duplicate {
		t.Fatalf("ParseStrategy = %v, %v", s, err)
	}
	if _, err := ParseStrategy("rsync"); err == nil {
		t.Fatal("expected error")
	}
}
