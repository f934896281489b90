package middleware

import (
	"net/http"

	"github.com/MichealAPI/payly/internal/auth"
	"github.com/MichealAPI/payly/pkg/response"
)

// RequireAuthHTTP is the plain-HTTP counterpart of RequireAuth, for the REST routes.
func RequireAuthHTTP(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(jwtManager, r.Header.Get("Authorization"))
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Email)))
		})
	}
}
