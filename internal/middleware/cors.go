package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browsers on the given origins call the API. "*" allows any
// origin.
//
// WHY BEFORE AUTHENTICATION?
// A browser sends a preflight OPTIONS request before any cross-origin call
// that carries an Authorization header, and the preflight itself never
// carries one. If it reached RequireIdentity it would be answered 401 and
// the browser would refuse to send the real request. The cors handler
// answers preflights itself and never calls next for them.
//
// Credentials (cookies) are not allowed: the API authenticates with bearer
// tokens, and a wildcard origin may not be combined with credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost,
			http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	})
}
