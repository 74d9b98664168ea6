package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/insightpilot/insightpilot-api/internal/services"
)

// JWT validates the Authorization header against the token service and
// attaches user_id to the request context. Revoked tokens are rejected even
// if their signature is still valid.
func JWT(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			userID, _, err := tokens.Verify(r.Context(), tokenStr, services.TokenTypeAccess)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID pulls the authenticated user id set by JWT.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value("user_id").(string)
	return id
}
