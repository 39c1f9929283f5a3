package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chapterpress/internal/auth"
	"chapterpress/internal/session"
)

func sessionCookie(rr interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.LoginPage, http.MethodGet, "/admin/login", formRequest(http.MethodGet, "/admin/login", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="password"`)
	assert.NotContains(t, rr.Body.String(), `name="code"`)

	rr = serve(env.auth.LoginPage, http.MethodGet, "/admin/login", asAdmin(formRequest(http.MethodGet, "/admin/login", nil)))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
}

func TestLoginSubmit(t *testing.T) {
	env := newTestEnv(t)

	bad := url.Values{"username": {"admin"}, "password": {"nope"}}
	rr := serve(env.auth.LoginSubmit, http.MethodPost, "/admin/login", formRequest(http.MethodPost, "/admin/login", bad))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid credentials.")
	assert.Contains(t, rr.Body.String(), `value="admin"`)
	assert.Nil(t, sessionCookie(rr))

	good := url.Values{"username": {" admin "}, "password": {"s3cret"}}
	rr = serve(env.auth.LoginSubmit, http.MethodPost, "/admin/login", formRequest(http.MethodPost, "/admin/login", good))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))

	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	req := formRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	claims := env.sessions.Get(req)
	require.NotNil(t, claims)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.auth.Logout, http.MethodPost, "/admin/logout", formRequest(http.MethodPost, "/admin/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/login", rr.Header().Get("Location"))
	c := sessionCookie(rr)
	require.NotNil(t, c)
	assert.True(t, c.MaxAge < 0)
}

func TestAPILogin_JSONAndForm(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.api.Login, http.MethodPost, "/api/auth/login",
		jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "s3cret"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[sessionResponse](t, rr)
	assert.True(t, resp.Authenticated)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *resp.ExpiresAt, time.Minute)
	assert.NotNil(t, sessionCookie(rr))

	form := url.Values{"username": {"admin"}, "password": {"s3cret"}}
	rr = serve(env.api.Login, http.MethodPost, "/api/auth/login", formRequest(http.MethodPost, "/api/auth/login", form))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(env.api.Login, http.MethodPost, "/api/auth/login",
		jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "root", "password": "s3cret"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, codeUnauthorized, decodeBody[errorEnvelope](t, rr).Error.Code)
}

func TestAPILogin_TwoFactor(t *testing.T) {
	env := newTestEnv(t)
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "chapterpress", AccountName: "admin"})
	require.NoError(t, err)
	creds := testCreds
	creds.TOTPSecret = key.Secret()
	api := NewAPI(env.svc, env.sessions, creds)

	rr := serve(api.Login, http.MethodPost, "/api/auth/login",
		jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "s3cret"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	require.NoError(t, err)
	rr = serve(api.Login, http.MethodPost, "/api/auth/login",
		jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "s3cret", "code": code}))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAPISession_Bearer(t *testing.T) {
	env := newTestEnv(t)

	rr := serve(env.api.Login, http.MethodPost, "/api/auth/login",
		jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "s3cret"}))
	token := decodeBody[sessionResponse](t, rr).Token

	req := jsonRequest(t, http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = serve(env.api.Session, http.MethodGet, "/api/auth/session", req)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[sessionResponse](t, rr)
	assert.True(t, got.Authenticated)
	assert.Equal(t, "admin", got.Username)
	assert.Empty(t, got.Token)

	req = jsonRequest(t, http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+strings.Repeat("x", 20))
	rr = serve(env.api.Session, http.MethodGet, "/api/auth/session", req)
	assert.JSONEq(t, `{"authenticated":false}`, rr.Body.String())
}
