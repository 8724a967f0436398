package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/saransh1220/filelink/internal/gateway"
	"github.com/saransh1220/filelink/internal/gateway/middleware"
	"github.com/saransh1220/filelink/internal/modules/filestorage"
	"github.com/saransh1220/filelink/internal/modules/links"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/postgres"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/database"
	"github.com/saransh1220/filelink/internal/shared/logger"
	"github.com/saransh1220/filelink/pkg/migration"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal("server exited", zap.Error(err))
	}
}

// run wires every module and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, appLogger *zap.Logger) error {
	backends, cleanup, err := connectStore(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	fileModule, err := filestorage.NewModule(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	linksModule, err := links.NewModule(cfg, backends, fileModule.Service(), appLogger)
	if err != nil {
		return err
	}

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, appLogger.Named("ratelimit"))
		go limiter.Cleanup(ctx, time.Minute)
	}

	handler := gateway.SetupRoutes(gateway.RouterConfig{
		PublicHandler:     linksModule.PublicHandler(),
		ManagementHandler: linksModule.ManagementHandler(),
		AuthMiddleware:    middleware.NewAuthMiddleware(cfg.JWT.Secret),
		RateLimiter:       limiter,
		LocalFiles:        fileModule.LocalHandler(),
		LocalFilesPath:    filestorage.LocalFilesPath,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		Logger:            appLogger,
	})

	appLogger.Info("starting filelink",
		zap.String("port", cfg.Server.Port),
		zap.String("public_base_url", cfg.Server.PublicBaseURL),
		zap.String("store", cfg.Store.Driver),
		zap.String("backend", cfg.FileStorage.Backend),
	)

	return gateway.NewServer(cfg.Server, handler, appLogger).Start(ctx)
}

// connectStore opens only the connection the selected store driver needs.
func connectStore(cfg config.Config, appLogger *zap.Logger) (links.Backends, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreRedis:
		client, err := database.NewRedis(cfg.Redis)
		if err != nil {
			return links.Backends{}, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		appLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
		return links.Backends{Redis: client}, closer(appLogger, "redis", client), nil

	case config.StorePostgres:
		if err := migration.AutoMigrate(postgres.Migrations, "migrations", cfg.Database.URL(), appLogger); err != nil {
			return links.Backends{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		db, err := database.NewPostgresDB(cfg.Database)
		if err != nil {
			return links.Backends{}, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		appLogger.Info("database connected", zap.String("host", cfg.Database.Host))
		return links.Backends{DB: db}, closer(appLogger, "database", db), nil

	default:
		return links.Backends{}, func() {}, nil
	}
}

func closer(appLogger *zap.Logger, name string, c interface{ Close() error }) func() {
	return func() {
		if err := c.Close(); err != nil {
			appLogger.Warn("close failed", zap.String("resource", name), zap.Error(err))
		}
	}
}
