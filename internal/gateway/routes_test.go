package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saransh1220/filelink/internal/gateway/middleware"
	"github.com/saransh1220/filelink/internal/modules/links"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"github.com/saransh1220/filelink/internal/shared/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type cdnFiles struct{}

func (cdnFiles) DirectURL(_ context.Context, ref string) (string, error) {
	return "https://cdn.example/" + ref, nil
}
func (cdnFiles) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "uploads/x", nil
}
func (cdnFiles) Purge(context.Context, string) error { return nil }

func testRouter(t *testing.T, limiter *middleware.IPRateLimiter) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.Store.Driver = config.StoreMemory
	cfg.Server.PublicBaseURL = "https://files.example.com"

	m, err := links.NewModule(cfg, links.Backends{}, cdnFiles{}, zap.NewNop())
	require.NoError(t, err)

	return SetupRoutes(RouterConfig{
		PublicHandler:     m.PublicHandler(),
		ManagementHandler: m.ManagementHandler(),
		AuthMiddleware:    middleware.NewAuthMiddleware(testSecret),
		RateLimiter:       limiter,
		AllowedOrigins:    "https://app.example.com",
		Logger:            zap.NewNop(),
	})
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestSetupRoutes_HealthAndMetrics(t *testing.T) {
	h := testRouter(t, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestSetupRoutes_RegisterThenResolve(t *testing.T) {
	h := testRouter(t, nil)
	token, err := utils.GenerateToken("owner-1", testSecret, time.Hour)
	require.NoError(t, err)

	body := `{"stable_ref":"BQACAgUAAx","display_name":"My.Movie.mp4","size_bytes":1572864000,"mime_type":"video/mp4"}`
	req := httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(h, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"stream_url":"https://files.example.com/stream/My.Movie.mp4-`)

	req = httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	slug := extractSlug(t, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/stream/"+slug, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.46 GB")

	rec = serve(h, httptest.NewRequest(http.MethodHead, "/download/"+slug, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/download/"+slug, nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://cdn.example/BQACAgUAAx", rec.Header().Get("Location"))
}

func extractSlug(t *testing.T, body string) string {
	t.Helper()
	const marker = "https://files.example.com/download/"
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0)
	rest := body[i+len(marker):]
	return rest[:strings.IndexByte(rest, '"')]
}

func TestSetupRoutes_PublicFailures(t *testing.T) {
	h := testRouter(t, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/download/anything-99999999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/download/nohyphenslug", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/download/a-12345678", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	for _, target := range []string{"/download/", "/stream/"} {
		rec = serve(h, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Invalid link", target)
	}
}

func TestSetupRoutes_ManagementNeedsToken(t *testing.T) {
	h := testRouter(t, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/files", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = serve(h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetupRoutes_RateLimited(t *testing.T) {
	h := testRouter(t, middleware.NewIPRateLimiter(0.001, 1, zap.NewNop()))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/download/anything-99999999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/download/anything-99999999", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
