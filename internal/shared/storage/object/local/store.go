package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"procedure-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Provider() string { return "local" }

// Put writes r to baseDir/key, replacing any existing file. Partial files are
// removed on failure.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil && size >= 0 && written != size {
		copyErr = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(fullPath)
		if copyErr != nil {
			return fmt.Errorf("write body: %w", copyErr)
		}
		return fmt.Errorf("close file: %w", closeErr)
	}
	return nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, object.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) resolve(key string) (string, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

var _ object.ObjectStore = (*Store)(nil)
