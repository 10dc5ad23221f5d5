package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/admixflow/admixflow/internal/service/token"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// AuthMiddleware extracts the actor identity and role from the bearer
// token. Role enforcement itself lives in the usecases; the middleware only
// authenticates.
type AuthMiddleware struct {
	tokens *token.Service
}

func NewAuthMiddleware(tokens *token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// ClaimsFromContext returns the authenticated caller, or nil outside an
// authenticated request.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(claimsKey).(*token.Claims)
	return claims
}
