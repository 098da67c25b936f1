package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive keeps rendered export files on local disk under a single root.
// Callers address files by a relative path such as "<job-id>/<filename>".
type Archive struct {
	root string
}

// NewArchive creates the root directory if needed and returns the archive.
func NewArchive(root string) (*Archive, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &Archive{root: root}, nil
}

// Save writes data under the given relative path, creating parent
// directories as needed. Paths escaping the root are rejected.
func (a *Archive) Save(rel string, data []byte) error {
	path, err := a.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare archive directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return nil
}

// Path returns the absolute on-disk location for a stored file.
func (a *Archive) Path(rel string) (string, error) {
	return a.resolve(rel)
}

// Remove deletes a stored file. A missing file is not an error.
func (a *Archive) Remove(rel string) error {
	path, err := a.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove archive file: %w", err)
	}
	return nil
}

// Sweep deletes every file whose modification time is older than maxAge and
// returns the relative paths it removed.
func (a *Archive) Sweep(maxAge time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-maxAge)
	var removed []string
	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		if rel, relErr := filepath.Rel(a.root, path); relErr == nil {
			removed = append(removed, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep archive: %w", err)
	}
	return removed, nil
}

func (a *Archive) resolve(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid archive path %q", rel)
	}
	return filepath.Join(a.root, cleaned), nil
}
