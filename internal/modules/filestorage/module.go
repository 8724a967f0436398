package filestorage

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saransh1220/filelink/internal/modules/filestorage/application"
	"github.com/saransh1220/filelink/internal/modules/filestorage/domain"
	"github.com/saransh1220/filelink/internal/modules/filestorage/infrastructure/local"
	"github.com/saransh1220/filelink/internal/modules/filestorage/infrastructure/s3"
	"github.com/saransh1220/filelink/internal/modules/filestorage/infrastructure/telegram"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"go.uber.org/zap"
)

// LocalFilesPath is where signed local-backend URLs are served.
const LocalFilesPath = "/files/"

// Module represents the FileStorage module
type Module struct {
	service      *application.FileService
	localHandler http.Handler
}

// NewModule creates the backend selected by cfg.FileStorage.Backend.
func NewModule(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Module, error) {
	logger = logger.Named("filestorage")
	fs := cfg.FileStorage

	var backend domain.Backend
	var localHandler http.Handler

	switch fs.Backend {
	case config.BackendTelegram:
		client, err := telegram.NewClient(telegram.Config{
			APIBase:         cfg.Telegram.APIBase,
			Token:           cfg.Telegram.BotToken,
			Timeout:         cfg.Telegram.Timeout,
			BreakerFailures: cfg.Telegram.BreakerFailures,
			BreakerOpenFor:  cfg.Telegram.BreakerOpenFor,
		}, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram backend: %w", err)
		}
		backend = client

	case config.BackendS3:
		storage, err := s3.NewS3Storage(ctx, s3.S3Config{
			BucketName:     fs.S3BucketName,
			Region:         fs.S3Region,
			Endpoint:       fs.S3Endpoint,
			PublicEndpoint: fs.S3PublicEndpoint,
			AccessKey:      fs.S3AccessKey,
			SecretKey:      fs.S3SecretKey,
			UseSSL:         fs.S3UseSSL,
			URLTTL:         fs.URLTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		backend = storage

	case config.BackendLocal:
		storage, err := local.NewLocalStorage(fs.LocalPath, cfg.Server.PublicBaseURL+LocalFilesPath, []byte(fs.LocalSigningKey), fs.URLTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		backend = storage
		localHandler = http.StripPrefix(LocalFilesPath, storage.Handler())

	default:
		return nil, fmt.Errorf("unknown storage backend %q", fs.Backend)
	}

	logger.Info("storage backend ready", zap.String("backend", backend.Name()))

	return &Module{
		service:      application.NewFileService(backend, logger),
		localHandler: localHandler,
	}, nil
}

// Service returns the file service for use by other modules
func (m *Module) Service() *application.FileService {
	return m.service
}

// LocalHandler serves signed local URLs; nil for other backends.
func (m *Module) LocalHandler() http.Handler {
	return m.localHandler
}
