package middleware

import (
	"net/http"
	"strings"

	"github.com/marketlane/storefront/pkg/auth"
	"github.com/marketlane/storefront/pkg/response"
)

// Authenticate validates the Authorization bearer token and stores the
// caller's uid in the request context. Missing or invalid tokens get a 401.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		if token == "" {
			response.Unauthorized(w, "missing bearer token")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), claims.UID)))
	})
}
