package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
)

// LocalDocumentStore implements port.DocumentStore on the local filesystem
type LocalDocumentStore struct {
	baseDir string
	baseURL string
	logger  *zap.Logger
}

// NewLocalDocumentStore creates a store rooted at baseDir.
// URLs are baseURL/key, or file:// paths when baseURL is empty.
func NewLocalDocumentStore(baseDir, baseURL string, logger *zap.Logger) *LocalDocumentStore {
	return &LocalDocumentStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Put writes r to key, replacing any existing document
func (s *LocalDocumentStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*port.StoredDocument, error) {
	fullPath := s.fullPath(key)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if size >= 0 && written != size {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("short write: got %d bytes, expected %d", written, size)
	}

	s.logger.Debug("Document saved",
		zap.String("key", key),
		zap.Int64("size", written))

	return &port.StoredDocument{
		Key:         key,
		URL:         s.url(key, fullPath),
		Size:        written,
		ContentType: contentType,
	}, nil
}

// Exists reports whether a document is stored under key
func (s *LocalDocumentStore) Exists(ctx context.Context, key string) (bool, error) {
	fullPath := s.fullPath(key)
	if err := s.validatePath(fullPath); err != nil {
		return false, err
	}
	_, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// Delete removes the document at key. Deleting a missing document succeeds.
func (s *LocalDocumentStore) Delete(ctx context.Context, key string) error {
	fullPath := s.fullPath(key)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalDocumentStore) fullPath(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

func (s *LocalDocumentStore) url(key, fullPath string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	if abs, err := filepath.Abs(fullPath); err == nil {
		fullPath = abs
	}
	return "file://" + filepath.ToSlash(fullPath)
}

// validatePath checks that the path stays within baseDir
func (s *LocalDocumentStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

var _ port.DocumentStore = (*LocalDocumentStore)(nil)
