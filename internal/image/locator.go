// Package image discovers receipt images on the filesystem.
//
// Discovery is deliberately simple: a flat, non-recursive directory scan
// filtered to the supported extensions, sorted by filename so batch runs
// process files in a deterministic order.
package image

import (
	"fmt"
	"os"

	"github.com/mmr-tortoise/receipted/internal/model"
)

// List scans a directory (non-recursively) and returns a reference for
// every file with a supported image extension, sorted by filename.
// Files with unsupported extensions and subdirectories are skipped
// silently. An empty directory yields an empty slice, not an error.
func List(dir string) ([]model.ImageRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by filename, which gives the
	// deterministic ordering for free.
	refs := make([]model.ImageRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := model.FormatFromPath(entry.Name())
		if err != nil {
			// Not an image we handle — skip, never fail the scan.
			continue
		}
		refs = append(refs, model.ImageRef{
			Path:   joinDir(dir, entry.Name()),
			Format: format,
		})
	}

	return refs, nil
}

// joinDir joins a directory and file name, leaving bare names untouched
// when scanning the current directory so output paths stay relative the
// way the user typed them.
func joinDir(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + string(os.PathSeparator) + name
}

// Resolve validates an explicitly named image path and returns its
// reference.
//
// Returns model.ErrFileNotFound when the path does not exist or is a
// directory, and model.ErrUnsupportedFormat when the extension is not
// in the supported set. The format check runs first so that a typo'd
// extension is reported as such even for an existing file.
func Resolve(path string) (model.ImageRef, error) {
	format, err := model.FormatFromPath(path)
	if err != nil {
		return model.ImageRef{}, fmt.Errorf("%s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ImageRef{}, fmt.Errorf("%s: %w", path, model.ErrFileNotFound)
		}
		return model.ImageRef{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return model.ImageRef{}, fmt.Errorf("%s is a directory: %w", path, model.ErrFileNotFound)
	}

	return model.ImageRef{Path: path, Format: format}, nil
}
