package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Strategy selects how unmodified source files reach the output tree.
type Strategy string

const (
	Duplicate Strategy = "duplicate"
	Symlink   Strategy = "symlink"
	Hardlink  Strategy = "hardlink"
)

// Strategies lists the supported strategies.
func Strategies() []Strategy {
	return []Strategy{Duplicate, Symlink, Hardlink}
}

// DefaultStrategy returns symlink everywhere except Windows, where creating
// symlinks usually needs elevated rights.
func DefaultStrategy() Strategy {
	if runtime.GOOS == "windows" {
		return Duplicate
	}
	return Symlink
}

// ParseStrategy validates a textual strategy name.
func ParseStrategy(value string) (Strategy, error) {
	normalized := Strategy(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range Strategies() {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("unsupported copy strategy %q (expected duplicate, symlink or hardlink)", value)
}

// Place puts src at dst according to the strategy. Symlinks point at the
// absolute source path.
func (s Strategy) Place(src, dst string) error {
	switch s {
	case Duplicate:
		return CopyFileVerified(src, dst)
	case Symlink:
		abs, err := filepath.Abs(src)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", src, err)
		}
		return os.Symlink(abs, dst)
	case Hardlink:
		return os.Link(src, dst)
	default:
		return fmt.Errorf("unsupported copy strategy %q", string(s))
	}
}
