package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"dsprep/internal/fileutil"
)

const (
	// duplicateFreeBytes is the free space below which a duplicating run is
	// likely to fill the volume.
	duplicateFreeBytes uint64 = 1 << 30
	// linkFreeBytes covers rendered masks and converted frames, which are
	// written even when sources are linked.
	linkFreeBytes uint64 = 64 << 20
)

// MinFreeBytes returns the free space a run with strategy should have on the
// output volume before a warning is reported.
func MinFreeBytes(strategy fileutil.Strategy) uint64 {
	if strategy == fileutil.Duplicate {
		return duplicateFreeBytes
	}
	return linkFreeBytes
}

// CheckReadableDirectory verifies that path is a directory that can be listed.
func CheckReadableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckReadableFile verifies that path is a regular file that can be read.
func CheckReadableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckWritableParent verifies that path can be used as an output directory:
// either it is a writable directory already, or its nearest existing
// ancestor is one so the directory can be created.
func CheckWritableParent(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "output path is empty"}
	}
	existing, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	info, err := os.Stat(existing)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", existing, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", existing)}
	}
	if err := unix.Access(existing, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", existing, err)}
	}
	if existing != filepath.Clean(path) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created under %s)", path, existing)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace reports the space available on the volume holding path. The
// result is advisory: a nearly full volume is worth a warning, not a refusal.
func CheckFreeSpace(name, path string, minFree uint64) Result {
	existing, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(existing, &stat); err != nil {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s (error: statfs: %v)", existing, err)}
	}
	free := uint64(stat.Bavail) * uint64(stat.Bsize)
	if free < minFree {
		return Result{Name: name, Advisory: true, Detail: fmt.Sprintf("%s free on %s (below %s)",
			humanize.IBytes(free), existing, humanize.IBytes(minFree))}
	}
	return Result{Name: name, Advisory: true, Passed: true, Detail: fmt.Sprintf("%s free on %s", humanize.IBytes(free), existing)}
}

// nearestExisting walks up from path to the first entry that exists.
func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		_, err := os.Lstat(current)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor of %s", path)
		}
		current = parent
	}
}
