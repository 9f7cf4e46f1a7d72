package vfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Local serves files from a directory on disk.
type Local struct {
	root string
}

// NewLocal creates a file system rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

// Root returns the directory this file system serves from.
func (l *Local) Root() string { return l.root }

func (l *Local) abs(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// Exists implements FileSystem.
func (l *Local) Exists(path string) bool {
	fi, err := os.Stat(l.abs(path))
	return err == nil && !fi.IsDir()
}

// ModTime implements FileSystem.
func (l *Local) ModTime(path string) (time.Time, error) {
	fi, err := os.Stat(l.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, ErrNotExist
		}
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// ReadAll implements FileSystem.
func (l *Local) ReadAll(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.abs(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteAll implements FileSystem.
func (l *Local) WriteAll(path string, data []byte) error {
	dst := l.abs(path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IsServicedByNetwork implements FileSystem; local files never are.
func (l *Local) IsServicedByNetwork(string) bool { return false }

// IsNetworkFileIOEnabled implements FileSystem.
func (l *Local) IsNetworkFileIOEnabled() bool { return true }

// NetworkPrefetch implements FileSystem; a no-op for local files.
func (l *Local) NetworkPrefetch(context.Context, string) bool { return true }
