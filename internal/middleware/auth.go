package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tailor-pos/api/internal/auth"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	brandKey  contextKey = "brand"
)

func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBrand scopes the request to the brand of the session. Tokens issued
// without a brand fall back to defaultBrand; if that is empty too the request
// is rejected.
func RequireBrand(defaultBrand string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			brand := claims.Brand
			if brand == "" {
				brand = defaultBrand
			}
			if brand == "" {
				writeError(w, http.StatusForbidden, "session has no brand")
				return
			}

			ctx := context.WithValue(r.Context(), brandKey, brand)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// BrandFromContext returns the brand set by RequireBrand, or "".
func BrandFromContext(ctx context.Context) string {
	brand, _ := ctx.Value(brandKey).(string)
	return brand
}

// WithBrand returns a context scoped to brand. Used by tests and background
// jobs that act outside an HTTP request.
func WithBrand(ctx context.Context, brand string) context.Context {
	return context.WithValue(ctx, brandKey, brand)
}

// WithClaims stores claims the way Authenticate does.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": msg})
}
