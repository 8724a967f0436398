package links

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/saransh1220/filelink/internal/modules/links/application"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/cache"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/memory"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/postgres"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/redis"
	linksHttp "github.com/saransh1220/filelink/internal/modules/links/interfaces/http"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"go.uber.org/zap"
)

// Backends holds the connections a store driver may need. Only the one
// matching cfg.Store.Driver has to be set.
type Backends struct {
	DB    *sqlx.DB
	Redis *goredis.Client
}

// Module represents the Links module
type Module struct {
	store             domain.Store
	service           *application.LinkService
	publicHandler     *linksHttp.PublicHandler
	managementHandler *linksHttp.ManagementHandler
}

// NewModule creates and initializes the Links module
func NewModule(cfg config.Config, backends Backends, files application.Files, logger *zap.Logger) (*Module, error) {
	logger = logger.Named("links")

	store, err := newStore(cfg.Store, backends)
	if err != nil {
		return nil, err
	}
	if cfg.Store.CacheSize > 0 {
		store = cache.NewStore(store, cfg.Store.CacheSize, cfg.Store.CacheTTL)
	}

	service := application.NewLinkService(store, files, application.Config{
		IDDigits:       cfg.Links.IDDigits,
		IDMaxAttempts:  cfg.Links.IDMaxAttempts,
		MaxFileSize:    cfg.Links.MaxFileSize,
		StoreTimeout:   cfg.Links.StoreTimeout,
		ResolveTimeout: cfg.Links.ResolveTimeout,
		PurgeBackend:   cfg.Links.RevokePurgeBackend,
	}, logger)

	pages, err := linksHttp.NewPages(cfg.Links.UploadEntryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	builder := application.NewLinkBuilder(cfg.Server.PublicBaseURL, cfg.Telegram.BotUsername)

	logger.Info("links module ready",
		zap.String("store", cfg.Store.Driver),
		zap.Int("cache_size", cfg.Store.CacheSize),
	)

	return &Module{
		store:             store,
		service:           service,
		publicHandler:     linksHttp.NewPublicHandler(service, pages, redirectMaxAge(cfg), logger),
		managementHandler: linksHttp.NewManagementHandler(service, builder, cfg.Links.MaxFileSize, logger),
	}, nil
}

func newStore(cfg config.StoreConfig, backends Backends) (domain.Store, error) {
	switch cfg.Driver {
	case config.StoreRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("store driver %q needs a redis client", cfg.Driver)
		}
		return redis.NewStore(backends.Redis), nil
	case config.StorePostgres:
		if backends.DB == nil {
			return nil, fmt.Errorf("store driver %q needs a database", cfg.Driver)
		}
		return postgres.NewStore(backends.DB), nil
	case config.StoreMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// redirectMaxAge never lets a cached redirect outlive the direct URL it points at.
func redirectMaxAge(cfg config.Config) time.Duration {
	maxAge := cfg.Links.RedirectMaxAge
	if ttl := cfg.FileStorage.URLTTL; ttl > 0 && ttl < maxAge {
		maxAge = ttl
	}
	return maxAge
}

// Store returns the mapping store
func (m *Module) Store() domain.Store {
	return m.store
}

// Service returns the link service
func (m *Module) Service() *application.LinkService {
	return m.service
}

// PublicHandler returns the handler for /download and /stream
func (m *Module) PublicHandler() *linksHttp.PublicHandler {
	return m.publicHandler
}

// ManagementHandler returns the handler for the owner API
func (m *Module) ManagementHandler() *linksHttp.ManagementHandler {
	return m.managementHandler
}
