package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MarcoTuMD/Template-Admin/internal/auth/keystone"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
)

// unexported, collision-proof context key
type claimsContextKeyType struct{}

var claimsKey = claimsContextKeyType{}

// ClaimsFromContext extracts the verified access token claims.
func ClaimsFromContext(ctx context.Context) (*keystone.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*keystone.Claims)
	return claims, ok
}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

// TokenVerifier checks access tokens handed to the browser in the User
// Record.
type TokenVerifier interface {
	VerifyToken(raw string) (*keystone.Claims, error)
}

type AuthMiddleware struct {
	Tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens}
}

// RequireAuth accepts requests carrying a valid "Authorization: Bearer"
// access token. The session flag is never consulted here.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := a.Tokens.VerifyToken(raw)
		if err != nil {
			logger.Debug("access token rejected", map[string]any{"error": err.Error()})
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
