// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit allows limit requests per client per window, keyed by the real
// client IP (True-Client-IP, X-Real-IP or the first X-Forwarded-For hop
// before falling back to RemoteAddr). API callers get the JSON error
// envelope; everyone else a plain 429. A non-positive limit disables it.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeAPIError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many attempts, try again later")
		return
	}
	http.Error(w, "Too many attempts, try again later.", http.StatusTooManyRequests)
}
