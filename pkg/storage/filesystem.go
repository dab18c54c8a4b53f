package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage keeps generated export files in a single flat directory
// on disk.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the directory if it does not exist yet.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export dir %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Save writes data under the given name. The write goes through a
// temporary file so readers never observe a partial export.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	base := filepath.Base(name)
	target := filepath.Join(s.dir, base)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", base, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("finalise export %s: %w", base, err)
	}
	return base, nil
}

// Open returns a read-only handle for a stored file.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", filepath.Base(name), err)
	}
	return f, nil
}

// Delete removes a stored file. A file already gone is not an error.
func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete export %s: %w", filepath.Base(name), err)
	}
	return nil
}

// CleanupOlderThan deletes files whose modification time predates now-ttl
// and reports which names were removed.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan export dir: %w", err)
	}

	cutoff := time.Now().Add(-ttl)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("remove stale export %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
