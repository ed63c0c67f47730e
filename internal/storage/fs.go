// Package storage manages the shared output directory holding generated
// package artifacts and uploaded media files.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is a flat storage root. Artifacts are written atomically under
// generated names; media files are written verbatim under caller-supplied
// names, last writer wins. The directory namespace is the only shared
// mutable state between requests.
type Dir struct {
	root string // absolute path to the output directory
}

// NewDir creates a Dir rooted at the given directory, which must exist.
func NewDir(root string) (*Dir, error) {
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
	return &Dir{root: abs}, nil
}

// Root returns the absolute storage root path.
func (d *Dir) Root() string {
	return d.root
}

// Resolve validates that name is a plain filename (no separators, no
// traversal) and returns its absolute path under the root. It does not
// check existence.
func (d *Dir) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("storage: filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("storage: invalid filename: %s", name)
	}
	abs := filepath.Join(d.root, cleaned)
	// Double-check the resolved path is still under the root.
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes storage root: %s", name)
	}
	return abs, nil
}

// WriteAtomic writes a new file under name: tmp file → fsync → rename.
// The name becomes visible in the directory only after the write fully
// completes, so a concurrent reader never observes a partial file.
func (d *Dir) WriteAtomic(name string, write func(io.Writer) error) error {
	abs, err := d.Resolve(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.root, ".deckforge-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// SaveMedia writes r verbatim under name, overwriting any existing file
// with that name. Returns the number of bytes written.
func (d *Dir) SaveMedia(name string, r io.Reader) (int64, error) {
	abs, err := d.Resolve(name)
	if err != nil {
		return 0, err
	}
	dst, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("storage: create %s: %w", name, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, r)
	if err != nil {
		return written, fmt.Errorf("storage: write %s: %w", name, err)
	}
	return written, nil
}

// Exists reports whether a regular file with the given name is present.
func (d *Dir) Exists(name string) bool {
	abs, err := d.Resolve(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// List returns the names of all regular files in the root, sorted,
// skipping dotfiles (in-flight temp files).
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
