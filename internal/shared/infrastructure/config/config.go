package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saransh1220/filelink/internal/shared/infrastructure/database"
)

// Store drivers.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Storage backends.
const (
	BackendTelegram = "telegram"
	BackendS3       = "s3"
	BackendLocal    = "local"
)

// DevSecret is the JWT and local signing secret used when none is set.
// Validate only accepts it in development mode.
const DevSecret = "default-dev-secret"

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Links       LinksConfig
	Store       StoreConfig
	Database    database.PostgresConfig
	Redis       database.RedisConfig
	Telegram    TelegramConfig
	FileStorage FileStorageConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	AllowedOrigins  string
	PublicBaseURL   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LinksConfig controls id allocation, lookups and redirects.
type LinksConfig struct {
	IDDigits       int
	IDMaxAttempts  int
	MaxFileSize    uint64
	StoreTimeout   time.Duration
	ResolveTimeout time.Duration
	// RedirectMaxAge is the Cache-Control hint on download redirects.
	RedirectMaxAge time.Duration
	// UploadEntryURL is where failure pages send people to upload a file.
	UploadEntryURL     string
	RevokePurgeBackend bool
}

// StoreConfig selects the mapping store and its record cache.
type StoreConfig struct {
	Driver    string
	CacheSize int
	CacheTTL  time.Duration
}

// TelegramConfig holds Bot API settings for the telegram backend.
type TelegramConfig struct {
	APIBase         string
	BotToken        string
	BotUsername     string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// FileStorageConfig holds file storage configuration
type FileStorageConfig struct {
	Backend          string
	URLTTL           time.Duration
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
	LocalSigningKey  string
}

// RateLimitConfig holds per-IP limits for public routes.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string
	Development bool
}

// Load reads configuration from environment variables
func Load() Config {
	port := getEnv("PORT", "8080")
	publicBase := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/")
	botUsername := strings.TrimPrefix(getEnv("TELEGRAM_BOT_USERNAME", ""), "@")

	uploadEntry := publicBase + "/"
	if botUsername != "" {
		uploadEntry = "https://t.me/" + botUsername
	}

	return Config{
		Server: ServerConfig{
			Port:            port,
			AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:4200"),
			PublicBaseURL:   publicBase,
			ReadTimeout:     parseDuration(getEnv("SERVER_READ_TIMEOUT", "15s"), 15*time.Second),
			WriteTimeout:    parseDuration(getEnv("SERVER_WRITE_TIMEOUT", "60s"), 60*time.Second),
			ShutdownTimeout: parseDuration(getEnv("SERVER_SHUTDOWN_TIMEOUT", "30s"), 30*time.Second),
		},
		Links: LinksConfig{
			IDDigits:           getEnvInt("LINKS_ID_DIGITS", 8),
			IDMaxAttempts:      getEnvInt("LINKS_ID_MAX_ATTEMPTS", 8),
			MaxFileSize:        uint64(getEnvInt("LINKS_MAX_FILE_SIZE", 2*1024*1024*1024)),
			StoreTimeout:       parseDuration(getEnv("STORE_TIMEOUT", "3s"), 3*time.Second),
			ResolveTimeout:     parseDuration(getEnv("RESOLVE_TIMEOUT", "10s"), 10*time.Second),
			RedirectMaxAge:     parseDuration(getEnv("REDIRECT_MAX_AGE", "1h"), time.Hour),
			UploadEntryURL:     getEnv("UPLOAD_ENTRY_URL", uploadEntry),
			RevokePurgeBackend: getEnvBool("REVOKE_PURGE_BACKEND", false),
		},
		Store: StoreConfig{
			Driver:    strings.ToLower(getEnv("STORE_DRIVER", StoreRedis)),
			CacheSize: getEnvInt("RECORD_CACHE_SIZE", 10000),
			CacheTTL:  parseDuration(getEnv("RECORD_CACHE_TTL", "5s"), 5*time.Second),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "filelink"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: database.RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			UseTLS:   getEnvBool("REDIS_TLS", false),
		},
		Telegram: TelegramConfig{
			APIBase:         strings.TrimRight(getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"), "/"),
			BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
			BotUsername:     botUsername,
			Timeout:         parseDuration(getEnv("TELEGRAM_TIMEOUT", "8s"), 8*time.Second),
			BreakerFailures: uint32(getEnvInt("TELEGRAM_BREAKER_FAILURES", 5)),
			BreakerOpenFor:  parseDuration(getEnv("TELEGRAM_BREAKER_OPEN_FOR", "30s"), 30*time.Second),
		},
		FileStorage: FileStorageConfig{
			Backend:          strings.ToLower(getEnv("STORAGE_BACKEND", BackendTelegram)),
			URLTTL:           parseDuration(getEnv("STORAGE_URL_TTL", "1h"), time.Hour),
			S3Region:         getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:       getEnv("S3_ENDPOINT", ""),
			S3PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", getEnv("S3_ENDPOINT", "")),
			S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
			S3BucketName:     getEnv("S3_BUCKET", ""),
			S3UseSSL:         getEnv("S3_USE_SSL", "true") == "true",
			LocalPath:        getEnv("LOCAL_STORAGE_PATH", "./uploads"),
			LocalSigningKey:  getEnv("LOCAL_SIGNING_KEY", getEnv("JWT_SECRET", DevSecret)),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", DevSecret),
			Expiry: parseDuration(getEnv("JWT_EXPIRATION", "720h"), 720*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst:   getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvBool("LOG_DEVELOPMENT", false),
		},
	}
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreRedis, StoreMemory:
	case StorePostgres:
		if c.Database.DBName == "" {
			errs = append(errs, errors.New("DB_NAME is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.FileStorage.Backend {
	case BackendTelegram:
		if c.Telegram.BotToken == "" {
			errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required for the telegram backend"))
		}
	case BackendS3:
		if c.FileStorage.S3BucketName == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	case BackendLocal:
		if c.FileStorage.LocalSigningKey == "" {
			errs = append(errs, errors.New("LOCAL_SIGNING_KEY is required for the local backend"))
		} else if c.FileStorage.LocalSigningKey == DevSecret && !c.Log.Development {
			errs = append(errs, errors.New("LOCAL_SIGNING_KEY must be set outside development mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.FileStorage.Backend))
	}

	if c.Links.IDMaxAttempts < 1 {
		errs = append(errs, errors.New("LINKS_ID_MAX_ATTEMPTS must be at least 1"))
	}
	if c.Links.StoreTimeout <= 0 || c.Links.ResolveTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT and RESOLVE_TIMEOUT must be positive"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if c.JWT.Secret == DevSecret && !c.Log.Development {
		errs = append(errs, errors.New("JWT_SECRET must be set outside development mode"))
	}

	return errors.Join(errs...)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
