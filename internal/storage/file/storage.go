package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/retry"
)

// Storage writes watermarked images into a single output directory on the local filesystem.
type Storage struct {
	dir      string
	strategy retry.Strategy
}

// NewStorage creates a Storage rooted at dir. Writes are retried according to strategy.
func NewStorage(dir string, strategy retry.Strategy) *Storage {
	if strategy.Attempts < 1 {
		strategy.Attempts = 1
	}

	return &Storage{dir: dir, strategy: strategy}
}

// Dir returns the output directory.
func (s *Storage) Dir() string {
	return s.dir
}

// EnsureDir creates the output directory if it is absent. Calling it again is a no-op.
func (s *Storage) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	fi, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", s.dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", s.dir)
	}

	return nil
}

// Save writes data to dir/filename, replacing an existing file of that name.
// The file only appears under its final name once fully written.
func (s *Storage) Save(filename string, data []byte) (string, error) {
	dstPath := filepath.Join(s.dir, filename)

	// Permission and not-exist errors will not change between attempts.
	var permanent error
	err := retry.Do(func() error {
		err := writeFileAtomic(s.dir, filename, data)
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			permanent = err
			return nil
		}
		return err
	}, s.strategy)
	if permanent != nil {
		err = permanent
	}
	if err != nil {
		return "", fmt.Errorf("failed to save file %s: %w", dstPath, err)
	}

	return dstPath, nil
}

// writeFileAtomic writes through a temp file in the same directory and renames it into place.
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, name))
}
