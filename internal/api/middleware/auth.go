package middleware

import (
	"net/http"
	"strings"

	apiContext "shortr/internal/api/context"
	"shortr/internal/pkg/errors"
	"shortr/internal/platform/auth"
)

// AuthMiddleware checks bearer tokens on the management API. With no secret
// configured every request passes through.
type AuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewAuthMiddleware(tokenSvc *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.tokenSvc.Enabled() {
			next(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1])
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		next(w, r.WithContext(apiContext.WithClaims(r.Context(), claims)))
	}
}

// RequireScope rejects authenticated callers lacking scope. It must run after
// Handle.
func (m *AuthMiddleware) RequireScope(scope string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !m.tokenSvc.Enabled() {
				next(w, r)
				return
			}

			claims, ok := apiContext.ClaimsFrom(r.Context())
			if !ok || !claims.HasScope(scope) {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
