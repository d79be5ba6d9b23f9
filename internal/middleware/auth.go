package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/technosupport/ts-alert-relay/internal/tokens"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*tokens.Claims, error)
}

type claimsKey struct{}

// GetClaims returns the validated claims injected by BearerAuth, if any.
func GetClaims(ctx context.Context) (*tokens.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*tokens.Claims)
	return c, ok
}

// BearerAuth verifies the JWT and injects its claims into the request
// context. requiredRole restricts which bearers may pass; RoleIngest
// bearers also pass viewer-gated routes.
func BearerAuth(validator TokenValidator, requiredRole tokens.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !roleAllows(claims.Role, requiredRole) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllows(have, want tokens.Role) bool {
	if have == want {
		return true
	}
	// Ingest tokens may also read.
	return have == tokens.RoleIngest && want == tokens.RoleViewer
}
