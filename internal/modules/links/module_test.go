package links_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/saransh1220/filelink/internal/modules/links"
	"github.com/saransh1220/filelink/internal/modules/links/application"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticFiles struct{}

func (staticFiles) DirectURL(_ context.Context, ref string) (string, error) {
	return "https://cdn.example/" + ref, nil
}
func (staticFiles) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "uploads/x", nil
}
func (staticFiles) Purge(context.Context, string) error { return nil }

func testConfig(driver string) config.Config {
	cfg := config.Load()
	cfg.Store.Driver = driver
	cfg.Server.PublicBaseURL = "https://files.example.com"
	return cfg
}

func TestNewModule_MemoryEndToEnd(t *testing.T) {
	m, err := links.NewModule(testConfig(config.StoreMemory), links.Backends{}, staticFiles{}, zap.NewNop())
	require.NoError(t, err)

	rec, err := m.Service().Register(context.Background(), application.RegisterInput{
		StableRef: "REF", DisplayName: "clip.webm", SizeBytes: 100, MimeOrExt: "video/webm", OwnerID: "u1",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.PublicHandler().Download(w, httptest.NewRequest(http.MethodGet, "/download/"+rec.Slug(), nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://cdn.example/REF", w.Header().Get("Location"))
	assert.NotNil(t, m.ManagementHandler())
}

func TestNewModule_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	m, err := links.NewModule(testConfig(config.StoreRedis), links.Backends{Redis: client}, staticFiles{}, zap.NewNop())
	require.NoError(t, err)

	rec, err := m.Service().Register(context.Background(), application.RegisterInput{
		StableRef: "REF", DisplayName: "a.txt", SizeBytes: 1, OwnerID: "u1",
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("file:"+rec.ShortID))
}

func TestNewModule_DriverErrors(t *testing.T) {
	_, err := links.NewModule(testConfig(config.StoreRedis), links.Backends{}, staticFiles{}, zap.NewNop())
	assert.ErrorContains(t, err, "redis client")

	_, err = links.NewModule(testConfig(config.StorePostgres), links.Backends{}, staticFiles{}, zap.NewNop())
	assert.ErrorContains(t, err, "database")

	_, err = links.NewModule(testConfig("mongo"), links.Backends{}, staticFiles{}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestNewModule_RedirectNeverOutlivesURL(t *testing.T) {
	cfg := testConfig(config.StoreMemory)
	cfg.Links.RedirectMaxAge = time.Hour
	cfg.FileStorage.URLTTL = 5 * time.Minute
	m, err := links.NewModule(cfg, links.Backends{}, staticFiles{}, zap.NewNop())
	require.NoError(t, err)

	rec, err := m.Service().Register(context.Background(), application.RegisterInput{
		StableRef: "REF", DisplayName: "a.txt", SizeBytes: 1, OwnerID: "u1",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.PublicHandler().Download(w, httptest.NewRequest(http.MethodGet, "/download/"+rec.Slug(), nil))
	assert.Equal(t, "private, max-age=300", w.Header().Get("Cache-Control"))
}
