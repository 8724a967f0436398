package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saransh1220/filelink/internal/gateway/middleware"
	links_http "github.com/saransh1220/filelink/internal/modules/links/interfaces/http"
	"go.uber.org/zap"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	PublicHandler     *links_http.PublicHandler
	ManagementHandler *links_http.ManagementHandler
	AuthMiddleware    *middleware.AuthMiddleWare
	// RateLimiter is optional; nil disables per-IP limits.
	RateLimiter *middleware.IPRateLimiter
	// LocalFiles serves signed local-backend URLs; nil for other backends.
	LocalFiles     http.Handler
	LocalFilesPath string
	AllowedOrigins string
	Logger         *zap.Logger
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) http.Handler {
	mux := http.NewServeMux()

	limit := func(h http.Handler) http.Handler {
		if config.RateLimiter == nil {
			return h
		}
		return config.RateLimiter.Handler(h)
	}
	api := func(h http.HandlerFunc) http.Handler {
		return middleware.CORSMiddleware(limit(config.AuthMiddleware.RequireAuth(h)), config.AllowedOrigins)
	}

	// Health Check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	// Public link routes; GET patterns also serve HEAD.
	mux.Handle("GET /download/{slug}", limit(http.HandlerFunc(config.PublicHandler.Download)))
	mux.Handle("GET /stream/{slug}", limit(http.HandlerFunc(config.PublicHandler.Stream)))
	// An empty slug is malformed, not an unknown route.
	mux.Handle("GET /download/{$}", limit(http.HandlerFunc(config.PublicHandler.Download)))
	mux.Handle("GET /stream/{$}", limit(http.HandlerFunc(config.PublicHandler.Stream)))

	if config.LocalFiles != nil {
		mux.Handle("GET "+config.LocalFilesPath, limit(config.LocalFiles))
	}

	// Owner management routes
	mux.Handle("OPTIONS /api/", middleware.CORSMiddleware(http.NotFoundHandler(), config.AllowedOrigins))
	mux.Handle("POST /api/files", api(config.ManagementHandler.Register))
	mux.Handle("POST /api/uploads", api(config.ManagementHandler.Upload))
	mux.Handle("GET /api/files", api(config.ManagementHandler.List))
	mux.Handle("DELETE /api/files/{id}", api(config.ManagementHandler.Revoke))

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Chain(mux,
		middleware.RequestLogger(logger),
		middleware.PrometheusMiddleware,
		middleware.Recovery(logger, http.HandlerFunc(config.PublicHandler.InternalError)),
	)
}
