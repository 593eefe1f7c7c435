package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSizeExceeded is returned by WriteTemp when the stream is larger than
// the configured cap. The partial temp file is already removed.
var ErrSizeExceeded = errors.New("stream exceeds size limit")

// DiskStore is a writable directory of opaque generated filenames. Promote
// relies on os.Rename staying within the same volume, which makes the
// temp-to-final move atomic: no reader ever sees a partially written file
// under its final name.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %q: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *DiskStore) Dir() string {
	return s.dir
}

// PathFor returns the absolute path a stored name resolves to.
func (s *DiskStore) PathFor(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// WriteTemp streams r into a fresh temp file inside the store, rejecting
// streams over maxBytes. On any failure, including context cancellation and
// overflow, the temp file is removed before returning. The caller owns the
// returned path and must either Promote or Remove it.
func (s *DiskStore) WriteTemp(ctx context.Context, r io.Reader, maxBytes int64) (string, error) {
	f, err := os.CreateTemp(s.dir, "upload-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	cleanup := func() {
		f.Close()
		os.Remove(tempPath)
	}

	// Read one byte past the cap so overflow is distinguishable from an
	// exactly-full stream.
	limited := io.LimitReader(&contextReader{ctx: ctx, r: r}, maxBytes+1)
	written, err := io.Copy(f, limited)
	if err != nil {
		cleanup()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if written > maxBytes {
		cleanup()
		return "", ErrSizeExceeded
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tempPath, nil
}

// Promote atomically moves a temp file to its final name and returns the
// final path.
func (s *DiskStore) Promote(tempPath, finalName string) (string, error) {
	finalPath := s.PathFor(finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to finalize file %q: %w", finalName, err)
	}
	return finalPath, nil
}

// Open opens a stored file for reading.
func (s *DiskStore) Open(name string) (io.ReadCloser, error) {
	return os.Open(s.PathFor(name))
}

// Create opens a stored file for writing, truncating any existing content.
func (s *DiskStore) Create(name string) (io.WriteCloser, error) {
	return os.Create(s.PathFor(name))
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *DiskStore) Remove(name string) error {
	err := os.Remove(s.PathFor(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file %q: %w", name, err)
	}
	return nil
}

// RemovePath deletes a file by absolute path, restricted to the store dir.
func (s *DiskStore) RemovePath(path string) error {
	return s.Remove(filepath.Base(path))
}

// contextReader aborts the copy as soon as the request context is done, so
// a cancelled upload never keeps streaming to disk.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
