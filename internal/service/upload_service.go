package service

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/storage"
)

type fileStorage interface {
	SaveStream(bucket, folder, originalName string, r io.Reader) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
}

// UploadConfig tunes upload validation.
type UploadConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// UploadedFile describes a stored upload and its signed download token.
type UploadedFile struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	MIMEType  string    `json:"mime_type"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadService stores files and issues signed download tokens.
type UploadService struct {
	storage fileStorage
	signer  *storage.SignedURLSigner
	cfg     UploadConfig
	logger  *zap.Logger
}

// NewUploadService constructs an UploadService.
func NewUploadService(store fileStorage, signer *storage.SignedURLSigner, cfg UploadConfig, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	return &UploadService{storage: store, signer: signer, cfg: cfg, logger: logger}
}

// Store validates and saves an uploaded file, returning its path and a signed
// token for download.
func (s *UploadService) Store(bucket, folder, originalName, mimeType string, size int64, r io.Reader) (*UploadedFile, error) {
	if size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	if !s.mimeAllowed(mimeType) {
		return nil, appErrors.Clone(appErrors.ErrInvalidFileType, fmt.Sprintf("file type %s is not allowed", mimeType))
	}

	relPath, err := s.storage.SaveStream(bucket, folder, originalName, io.LimitReader(r, s.cfg.MaxFileSizeBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	token, expiresAt, err := s.signer.Generate(relPath)
	if err != nil {
		if cleanupErr := s.storage.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphan upload", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("file stored", zap.String("path", relPath), zap.Int64("size", size))
	return &UploadedFile{
		Path:      relPath,
		Name:      originalName,
		Size:      size,
		MIMEType:  mimeType,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open validates a signed token and returns the file for streaming.
func (s *UploadService) Open(token string) (*os.File, string, error) {
	relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return file, relPath, nil
}

// Remove deletes a stored file by its relative path.
func (s *UploadService) Remove(relPath string) error {
	if err := s.storage.Delete(relPath); err != nil {
		if os.IsNotExist(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file")
	}
	s.logger.Info("file removed", zap.String("path", relPath))
	return nil
}

func (s *UploadService) mimeAllowed(mimeType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if allowed == mimeType {
			return true
		}
	}
	return false
}
