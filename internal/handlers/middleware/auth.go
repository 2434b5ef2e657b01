// internal/handlers/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/pkg/logger"
	"github.com/ammerola/storefront-inventory/internal/pkg/token"
)

type claimsKey struct{}

// UserClaims is the caller identity attached to an authenticated request.
type UserClaims struct {
	UserID string
	Role   domain.UserRole
}

// TokenValidator is the part of the token service the middleware needs.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Authenticate requires a valid Bearer token and puts its claims on the
// request context.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="inventory"`)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
				return
			}

			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				logger.FromContext(r.Context()).DebugContext(r.Context(), "token rejected")
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := WithUserClaims(r.Context(), UserClaims{
				UserID: claims.UserID,
				Role:   domain.UserRole(claims.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles rejects authenticated callers whose role is not listed.
func RequireRoles(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := UserClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if !slices.Contains(roles, claims.Role) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithUserClaims returns ctx carrying c, also exposing the identity to the
// logger's context handler.
func WithUserClaims(ctx context.Context, c UserClaims) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, c)
	ctx = context.WithValue(ctx, logger.ContextKeyUserID, c.UserID)
	ctx = context.WithValue(ctx, logger.ContextKeyUserRole, string(c.Role))
	return ctx
}

// UserClaimsFromContext returns the claims set by Authenticate.
func UserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(UserClaims)
	return c, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     msg,
		"code":      code,
		"retryable": status == http.StatusTooManyRequests,
	})
}
