package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// OutputSuffix is appended to the source directory name to form the output directory name.
const OutputSuffix = "_watermark"

// Supported image file extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImageFile reports whether name has a supported image extension, ignoring case.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Discover lists the direct children of dir that are regular files with a
// supported image extension. Subdirectories are not descended into.
// The result is sorted by file name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !IsImageFile(e.Name()) {
			continue
		}

		path := filepath.Join(dir, e.Name())
		if !isRegular(path, e) {
			continue
		}

		files = append(files, path)
	}

	return files, nil
}

// isRegular follows symlinks so a link to an image counts as a file.
func isRegular(path string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}

	fi, err := os.Stat(path)
	if err != nil {
		return false
	}

	return fi.Mode().IsRegular()
}

// OutputDirFor returns <dir>/<name of dir>_watermark.
// dir is made absolute first so "." resolves to a real directory name.
func OutputDirFor(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	return filepath.Join(dir, filepath.Base(dir)+OutputSuffix)
}
