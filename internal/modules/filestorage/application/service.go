package application

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/saransh1220/filelink/internal/modules/filestorage/domain"
	"go.uber.org/zap"
)

var directURLDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "filelink_direct_url_duration_seconds",
		Help:    "Time spent obtaining a direct URL from the storage backend",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	},
	[]string{"backend", "outcome"},
)

// UploadFolder is the key prefix for uploaded objects.
const UploadFolder = "uploads"

// FileService is the storage backend as the rest of the application sees it.
type FileService struct {
	backend domain.Backend
	logger  *zap.Logger
}

// NewFileService creates a new file service
func NewFileService(backend domain.Backend, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		backend: backend,
		logger:  logger,
	}
}

// Backend returns the backend name.
func (s *FileService) Backend() string {
	return s.backend.Name()
}

// DirectURL asks the backend for a fresh direct URL. Nothing is cached.
func (s *FileService) DirectURL(ctx context.Context, ref string) (string, error) {
	start := time.Now()
	u, err := s.backend.DirectURL(ctx, ref)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	directURLDuration.WithLabelValues(s.backend.Name(), outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn("direct url resolution failed",
			zap.String("backend", s.backend.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}
	return u, nil
}

// CanUpload reports whether the backend accepts bytes.
func (s *FileService) CanUpload() bool {
	_, ok := s.backend.(domain.Uploader)
	return ok
}

// Upload stores body under uploads/<uuid><ext> and returns its stable reference.
func (s *FileService) Upload(ctx context.Context, body io.Reader, filename, contentType string) (string, error) {
	up, ok := s.backend.(domain.Uploader)
	if !ok {
		return "", fmt.Errorf("%s: %w", s.backend.Name(), domain.ErrNotSupported)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", UploadFolder, uuid.New().String(), ext)
	return up.Upload(ctx, key, body, contentType)
}

// Purge deletes the object behind ref.
func (s *FileService) Purge(ctx context.Context, ref string) error {
	del, ok := s.backend.(domain.Deleter)
	if !ok {
		return fmt.Errorf("%s: %w", s.backend.Name(), domain.ErrNotSupported)
	}
	return del.Delete(ctx, ref)
}
