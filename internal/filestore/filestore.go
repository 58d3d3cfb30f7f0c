package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

var ErrContentNotFound = errors.New("file content not found")

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeName replaces everything outside [a-zA-Z0-9._-] with an
// underscore. Used both for stored file names and download file names.
func SanitizeName(name string) string {
	if name == "" {
		return "file"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// Store writes uploaded bytes under <dataDir>/uploads. It is the only
// component that touches the blob directory; metadata rows reference the
// paths it returns.
type Store struct {
	dir string
}

func New(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save streams r to disk and returns the stored path and byte count. The
// write is fully flushed before Save returns, so a metadata row inserted
// afterwards never points at a half-written file.
func (s *Store) Save(storedName string, r io.Reader) (string, int64, error) {
	path := filepath.Join(s.dir, SanitizeName(storedName))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create stored file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("write stored file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("sync stored file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("close stored file: %w", err)
	}

	return path, n, nil
}

// Open returns the stored content for reading. A missing file maps to
// ErrContentNotFound so callers can answer 404 instead of 500.
func (s *Store) Open(storedPath string) (io.ReadCloser, error) {
	f, err := os.Open(storedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// Remove deletes stored content, tolerating files that are already gone.
func (s *Store) Remove(storedPath string) error {
	if err := os.Remove(storedPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}
