// Package middleware provides HTTP middleware for the chapterpress server.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"chapterpress/internal/auth"
	"chapterpress/internal/session"
)

type contextKey string

// AuthKey is the context key holding the request's auth.Context.
const AuthKey contextKey = "auth"

// LoadAuth resolves the session cookie or bearer token once per request and
// stores the resulting auth.Context. Requests without a valid session carry
// auth.Anonymous.
func LoadAuth(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := store.Context(r)
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), ac)))
		})
	}
}

// WithAuth returns a copy of ctx carrying ac.
func WithAuth(ctx context.Context, ac auth.Context) context.Context {
	return context.WithValue(ctx, AuthKey, ac)
}

// AuthFromCtx returns the auth.Context stored by LoadAuth, or
// auth.Anonymous when none is present.
func AuthFromCtx(ctx context.Context) auth.Context {
	ac, ok := ctx.Value(AuthKey).(auth.Context)
	if !ok {
		return auth.Anonymous
	}
	return ac
}

// RequireAdmin redirects to the admin login page unless the request is
// authenticated as an admin. Must run after LoadAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !AuthFromCtx(r.Context()).IsAdmin() {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIAuth rejects state-changing API requests that are not
// authenticated as an admin with a 401 JSON error. Safe methods pass
// through; the service still decides what an anonymous reader may see.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) || AuthFromCtx(r.Context()).IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	})
}

func isAPIRequest(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

// writeAPIError writes the API error envelope for failures that happen
// before a handler runs.
func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}
