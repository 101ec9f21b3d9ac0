// Package storage keeps uploaded image files on disk. The engine only ever
// sees the opaque path returned by Save; file bytes never cross into it.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Uploads stores files under a single directory with generated names.
type Uploads struct {
	dir      string
	maxBytes int64
}

// NewUploads creates the upload directory if needed.
func NewUploads(dir string, maxSizeMB int64) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: %w", err)
	}
	return &Uploads{dir: dir, maxBytes: maxSizeMB << 20}, nil
}

// Dir returns the upload directory so the HTTP layer can serve it statically.
func (u *Uploads) Dir() string {
	return u.dir
}

// Save writes one uploaded file under a uuid name, keeping only the original
// extension, and returns the stored path.
func (u *Uploads) Save(fh *multipart.FileHeader) (string, error) {
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		return "", fmt.Errorf("uploads: file too large (%d bytes)", fh.Size)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("uploads: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext
	dstPath := filepath.Join(u.dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("uploads: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("uploads: %w", err)
	}
	return dstPath, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (u *Uploads) Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
