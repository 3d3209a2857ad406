package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage persists uploaded files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies from reader into a uniquely named file under bucket/folder
// and returns the relative storage path.
func (s *LocalStorage) SaveStream(bucket, folder, originalName string, r io.Reader) (string, error) {
	relPath := filepath.Join(bucket, folder, uniqueName(originalName))
	path := s.resolve(relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return filepath.ToSlash(relPath), nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(relPath string) (*os.File, error) {
	path := s.resolve(relPath)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(relPath string) error {
	path := s.resolve(relPath)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// resolve joins the relative path under the base dir, refusing traversal.
func (s *LocalStorage) resolve(relPath string) string {
	cleaned := filepath.Clean("/" + relPath)
	return filepath.Join(s.baseDir, cleaned)
}

func uniqueName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
