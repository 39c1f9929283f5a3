// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not set")
	return nil
}

func TestNewCSRFSecureFlag(t *testing.T) {
	for _, secure := range []bool{true, false} {
		handler := NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

		c := csrfCookie(t, rr)
		if c.Secure != secure {
			t.Errorf("cookie Secure: got %v, want %v", c.Secure, secure)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie SameSite: got %v, want StrictMode", c.SameSite)
		}
		if len(c.Value) != csrfTokenLength*2 {
			t.Errorf("token length: got %d, want %d", len(c.Value), csrfTokenLength*2)
		}
	}
}

func TestGetCSRFTokenOnFirstRequest(t *testing.T) {
	var seen string
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCSRFToken(r)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	if seen == "" {
		t.Fatal("handler should see the freshly minted token")
	}
	if c := csrfCookie(t, rr); c.Value != seen {
		t.Errorf("token mismatch: context %q, cookie %q", seen, c.Value)
	}
}

func TestCSRFStateChangingRequests(t *testing.T) {
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	getRR := httptest.NewRecorder()
	handler.ServeHTTP(getRR, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	cookie := csrfCookie(t, getRR)

	tests := []struct {
		name   string
		build  func() *http.Request
		status int
	}{
		{
			name: "missing token",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/admin/login", nil)
			},
			status: http.StatusForbidden,
		},
		{
			name: "wrong header",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodDelete, "/admin/chapters/1", nil)
				r.Header.Set(CSRFHeaderName, "nope")
				return r
			},
			status: http.StatusForbidden,
		},
		{
			name: "valid header",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/admin/categories", nil)
				r.Header.Set(CSRFHeaderName, cookie.Value)
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "valid form field",
			build: func() *http.Request {
				form := url.Values{CSRFFormField: {cookie.Value}}
				r := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.build()
			req.AddCookie(cookie)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestCSRFPostWithoutCookieRejected(t *testing.T) {
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	req.Header.Set(CSRFHeaderName, "guess")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestCSRFFormBodyLimit(t *testing.T) {
	called := false
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	getRR := httptest.NewRecorder()
	handler.ServeHTTP(getRR, httptest.NewRequest(http.MethodGet, "/admin/chapters/new", nil))
	cookie := csrfCookie(t, getRR)

	form := url.Values{
		CSRFFormField: {cookie.Value},
		"content":     {strings.Repeat("a", MaxBodyBytes)},
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/chapters", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", rr.Code)
	}
	if called {
		t.Error("handler ran for an oversized body")
	}
}
