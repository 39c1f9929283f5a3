// Package session carries the signed admin session token between requests.
// The token travels in an HttpOnly cookie for browsers, or in an
// "Authorization: Bearer" header for API clients. Nothing is stored
// server-side; a token is valid until it expires.
package session

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chapterpress/internal/auth"
)

// CookieName is the name of the session cookie sent to the browser.
const CookieName = "cp_session"

// Store issues and reads session tokens.
type Store struct {
	tokens *auth.TokenManager
	secure bool
}

// NewStore creates a session store. secure marks the cookie Secure, which
// should be set whenever the site is served over TLS.
func NewStore(tokens *auth.TokenManager, secure bool) *Store {
	return &Store{tokens: tokens, secure: secure}
}

// Create issues a token for username and sets the session cookie on the
// response. The token and its expiry are returned for API clients.
func (s *Store) Create(w http.ResponseWriter, username, role string) (string, time.Time, error) {
	token, expires, err := s.tokens.Issue(username, role)
	if err != nil {
		return "", time.Time{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
		MaxAge:   int(s.tokens.TTL().Seconds()),
	})
	return token, expires, nil
}

// Get returns the claims of the request's session token, or nil if the
// request carries no valid token.
func (s *Store) Get(r *http.Request) *auth.Claims {
	raw := tokenFromRequest(r)
	if raw == "" {
		return nil
	}
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		slog.Debug("session token rejected", "error", err)
		return nil
	}
	return claims
}

// Context resolves the request's auth.Context.
func (s *Store) Context(r *http.Request) auth.Context {
	return auth.FromClaims(s.Get(r))
}

// Destroy expires the session cookie. Bearer tokens cannot be revoked.
func (s *Store) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
