package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/saransh1220/filelink/internal/shared/utils"
)

type contextKey string

const ContextKeyOwnerID contextKey = "owner_id"

// OwnerID returns the authenticated owner injected by RequireAuth.
func OwnerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyOwnerID).(string)
	return id, ok && id != ""
}

// WithOwnerID stores an owner id in ctx.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ContextKeyOwnerID, ownerID)
}

type AuthMiddleWare struct {
	jwtSecret string
}

// NewAuthMiddleware creates an auth middleware validating HS256 owner tokens.
func NewAuthMiddleware(jwtSecret string) *AuthMiddleWare {
	return &AuthMiddleWare{jwtSecret: jwtSecret}
}

// RequireAuth rejects requests without a valid bearer token and injects the
// token subject as the owner id.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			writeAuthError(w, "missing or invalid authorization")
			return
		}

		claims, err := utils.ValidateToken(tokenStr, m.jwtSecret)
		if err != nil {
			writeAuthError(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), claims.OwnerID())))
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="filelink"`)
	utils.WriteError(w, http.StatusUnauthorized, msg, nil)
}
