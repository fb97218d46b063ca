package outdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"dsprep/internal/fileutil"
	"dsprep/internal/logging"
	"dsprep/internal/services"
)

const stageName = "outdir"

// Prepare makes path ready to receive a new dataset. A missing directory is
// created. An existing non-empty directory is refused unless force is set,
// in which case its contents are removed; the directory itself stays so
// a symlinked output root survives.
func Prepare(path string, force bool, logger *slog.Logger) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return services.Wrap(services.ErrConfiguration, stageName, "prepare", "output path is empty", nil)
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return services.Wrap(services.ErrIO, stageName, "create", path, err)
		}
		return nil
	case err != nil:
		return services.Wrap(services.ErrIO, stageName, "stat", path, err)
	case !info.IsDir():
		return services.Wrap(services.ErrConfiguration, stageName, "prepare", fmt.Sprintf("%s exists and is not a directory", path), nil)
	}

	empty, err := fileutil.IsDirEmpty(path)
	if err != nil {
		return services.Wrap(services.ErrIO, stageName, "read", path, err)
	}
	if empty {
		return nil
	}
	if !force {
		return services.Wrap(services.ErrConfiguration, stageName, "prepare",
			fmt.Sprintf("output directory %s is not empty (use --force to replace it)", path), nil)
	}
	return clearContents(path, logger)
}

func clearContents(path string, logger *slog.Logger) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return services.Wrap(services.ErrIO, stageName, "read", path, err)
	}
	for _, entry := range entries {
		target := filepath.Join(path, entry.Name())
		if err := os.RemoveAll(target); err != nil {
			return services.Wrap(services.ErrIO, stageName, "clear", target, err)
		}
	}
	if logger != nil {
		logger.Info("output directory cleared",
			logging.String("path", path),
			logging.Int("entries", len(entries)),
			logging.String(logging.FieldEventType, "output_cleared"),
		)
	}
	return nil
}

// Lock guards an output directory against concurrent runs.
type Lock struct {
	path string
	fl   *flock.Flock
}

// LockPath returns the lock file used for the output directory at path. It
// lives next to the directory so clearing the directory leaves it alone.
func LockPath(path string) string {
	clean := filepath.Clean(path)
	return filepath.Join(filepath.Dir(clean), "."+filepath.Base(clean)+".lock")
}

// Acquire takes the lock for the output directory at path without waiting.
func Acquire(path string) (*Lock, error) {
	lockPath := LockPath(path)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "lock", lockPath, err)
	}
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, stageName, "lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "lock",
			fmt.Sprintf("another dsprep run is writing to %s", path), nil)
	}
	return &Lock{path: lockPath, fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks the lock file. The file stays on disk so every run locks
// the same inode; removing it would let a waiting run hold a lock on an
// unlinked file while a newer run locks a fresh one.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
