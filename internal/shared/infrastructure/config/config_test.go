package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:4200", cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicBaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, 8, cfg.Links.IDDigits)
	assert.Equal(t, 8, cfg.Links.IDMaxAttempts)
	assert.Equal(t, uint64(2*1024*1024*1024), cfg.Links.MaxFileSize)
	assert.Equal(t, 3*time.Second, cfg.Links.StoreTimeout)
	assert.Equal(t, 10*time.Second, cfg.Links.ResolveTimeout)
	assert.Equal(t, time.Hour, cfg.Links.RedirectMaxAge)
	assert.Equal(t, "http://localhost:8080/", cfg.Links.UploadEntryURL)
	assert.False(t, cfg.Links.RevokePurgeBackend)

	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.CacheTTL)
	assert.Equal(t, BackendTelegram, cfg.FileStorage.Backend)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIBase)
	assert.Equal(t, uint32(5), cfg.Telegram.BreakerFailures)
	assert.Equal(t, DevSecret, cfg.JWT.Secret)
	assert.Equal(t, DevSecret, cfg.FileStorage.LocalSigningKey)
	assert.Equal(t, 720*time.Hour, cfg.JWT.Expiry)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()

	os.Setenv("PORT", "9000")
	os.Setenv("PUBLIC_BASE_URL", "https://files.example.com/")
	os.Setenv("TELEGRAM_BOT_USERNAME", "@FileLinkBot")
	os.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	os.Setenv("STORE_DRIVER", "Postgres")
	os.Setenv("STORE_TIMEOUT", "500ms")
	os.Setenv("LINKS_ID_MAX_ATTEMPTS", "3")
	os.Setenv("REVOKE_PURGE_BACKEND", "true")
	os.Setenv("REDIS_DB", "2")
	os.Setenv("REDIS_TLS", "true")
	os.Setenv("RATE_LIMIT_RPS", "2.5")
	os.Setenv("DB_HOST", "db-server")
	os.Setenv("DB_NAME", "production")
	os.Setenv("JWT_SECRET", "s3cr3t-from-vault")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "https://files.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, "FileLinkBot", cfg.Telegram.BotUsername)
	assert.Equal(t, "https://t.me/FileLinkBot", cfg.Links.UploadEntryURL)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Links.StoreTimeout)
	assert.Equal(t, 3, cfg.Links.IDMaxAttempts)
	assert.True(t, cfg.Links.RevokePurgeBackend)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.True(t, cfg.Redis.UseTLS)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, "db-server", cfg.Database.Host)
	assert.Equal(t, "production", cfg.Database.DBName)
	assert.Equal(t, "s3cr3t-from-vault", cfg.FileStorage.LocalSigningKey)

	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("LINKS_ID_DIGITS", "eight")
	os.Setenv("RESOLVE_TIMEOUT", "soon")
	os.Setenv("LOG_DEVELOPMENT", "maybe")

	cfg := Load()

	assert.Equal(t, 8, cfg.Links.IDDigits)
	assert.Equal(t, 10*time.Second, cfg.Links.ResolveTimeout)
	assert.False(t, cfg.Log.Development)
}

func TestValidate(t *testing.T) {
	os.Clearenv()

	t.Run("telegram without token", func(t *testing.T) {
		cfg := Load()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	})

	t.Run("unknown drivers", func(t *testing.T) {
		cfg := Load()
		cfg.Store.Driver = "mongo"
		cfg.FileStorage.Backend = "ftp"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORE_DRIVER")
		assert.Contains(t, err.Error(), "STORAGE_BACKEND")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		cfg := Load()
		cfg.FileStorage.Backend = BackendS3
		cfg.JWT.Secret = "jwt-secret"
		assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")
	})

	t.Run("local memory ok", func(t *testing.T) {
		cfg := Load()
		cfg.Store.Driver = StoreMemory
		cfg.FileStorage.Backend = BackendLocal
		cfg.JWT.Secret = "jwt-secret"
		cfg.FileStorage.LocalSigningKey = "signing-key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("default secrets rejected outside development", func(t *testing.T) {
		cfg := Load()
		cfg.FileStorage.Backend = BackendLocal
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "LOCAL_SIGNING_KEY")

		cfg.Telegram.BotToken = "123:abc"
		cfg.FileStorage.Backend = BackendTelegram
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
	})

	t.Run("default secrets allowed in development", func(t *testing.T) {
		cfg := Load()
		cfg.FileStorage.Backend = BackendLocal
		cfg.Log.Development = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("zero attempts", func(t *testing.T) {
		cfg := Load()
		cfg.FileStorage.Backend = BackendLocal
		cfg.Log.Development = true
		cfg.Links.IDMaxAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "LINKS_ID_MAX_ATTEMPTS")
	})
}
