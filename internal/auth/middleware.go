package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue compares keys by type and value. A plain string key like
// "identity" could collide with any other package using the same string; a
// package-private type cannot.
type contextKey struct{}

var identityKey contextKey

// Identity is who the caller is, as proven by their token.
//
// The zero value is the anonymous caller. Handlers and services never see a
// half-filled identity: either the token verified and both fields came from
// it, or nothing did.
type Identity struct {
	Username string
	IsAdmin  bool
}

// Authenticated reports whether the identity came from a verified token.
func (id Identity) Authenticated() bool {
	return id.Username != ""
}

// IdentityFromContext returns the identity stored by Identify, or the
// anonymous zero value.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

// WithIdentity returns a copy of ctx carrying id. Identify uses it; tests use
// it to build requests for handlers without minting tokens.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Identify is the first, global authentication stage.
//
// It reads "Authorization: Bearer <token>", verifies it, and stores the
// resulting Identity in the request context. A missing, malformed or invalid
// token is NOT an error here: the request simply continues as anonymous and
// the second stage decides whether that is acceptable for the route.
//
// TWO STAGES:
//
//	Identify (every request)  → who is this? (maybe nobody)
//	RequireIdentity (groups)  → is "nobody" allowed here?
//
// Keeping them apart lets public routes (/meals, /auth) share the same router
// without each handler parsing headers itself.
func Identify(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearerToken(r); raw != "" {
				if claims, err := tokens.Verify(raw); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), Identity(claims)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects anonymous callers with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).Authenticated() {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin lets only administrators through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).IsAdmin {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrAdmin lets through administrators and callers whose username
// equals the chi URL parameter named param.
func RequireSelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if !id.Authenticated() || (!id.IsAdmin && id.Username != chi.URLParam(r, param)) {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme
// is matched case-insensitively ("bearer", "Bearer", "BEARER").
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeUnauthorized writes the same {error:{message,status}} body the
// handler package uses, without importing it (handler depends on auth).
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": "Unauthorized",
			"status":  http.StatusUnauthorized,
		},
	})
}
