package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/skhapre/dashboard-app/services"
)

type contextKey string

const ownerContextKey contextKey = "owner"

// OwnerFromContext returns the authenticated owner set by the auth middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerContextKey).(string)
	return owner, ok
}

type AuthMiddleware struct {
	authService *services.AuthService
}

func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondErr(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		// Extract token from Bearer format
		authParts := strings.Split(authHeader, " ")
		if len(authParts) != 2 || authParts[0] != "Bearer" {
			respondErr(w, http.StatusUnauthorized, "invalid authorization format")
			return
		}

		owner, err := m.authService.VerifyJWT(authParts[1])
		if err != nil {
			respondErr(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerContextKey, owner)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
