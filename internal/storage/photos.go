// Package storage manages the photo files referenced by person
// documents, stored flat under the uploads directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// image extensions accepted for stored photos.
var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// IsImageName reports whether name carries an accepted image extension.
func IsImageName(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FS stores photo files under a single root directory.
type FS struct {
	root string // absolute path to the photos directory
}

// NewFS creates an FS rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute photos directory.
func (f *FS) Root() string {
	return f.root
}

// safeName validates that name is a plain file name (no path
// separators, no traversal) and returns its absolute path.
func (f *FS) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("storage: invalid filename: %s", name)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes photos directory")
	}
	return abs, nil
}

// Path resolves name to an absolute path for serving.
func (f *FS) Path(name string) (string, error) {
	return f.safeName(name)
}

// Save atomically writes src to name: tmp file, fsync, rename.
func (f *FS) Save(name string, src io.Reader) (int64, error) {
	abs, err := f.safeName(name)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(f.root, ".rodovid-tmp-*")
	if err != nil {
		return 0, fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, src)
	if err != nil {
		return 0, fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return 0, fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return written, nil
}

// Delete removes the photo file at name.
func (f *FS) Delete(name string) error {
	abs, err := f.safeName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// List returns the name of every stored image file.
func (f *FS) List() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsImageName(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}
