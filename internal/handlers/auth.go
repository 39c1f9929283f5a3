package handlers

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"chapterpress/internal/auth"
	"chapterpress/internal/metrics"
	"chapterpress/internal/middleware"
	"chapterpress/internal/render"
	"chapterpress/internal/session"
)

// Auth groups the HTML sign-in and sign-out handlers for the admin area.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	creds    auth.Credentials
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, creds auth.Credentials) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, creds: creds}
}

// authenticate checks a login attempt and records its outcome.
func authenticate(creds auth.Credentials, username, password, code string) bool {
	ok := creds.Check(username, password, code)
	if ok {
		metrics.RecordLogin("success")
	} else {
		metrics.RecordLogin("failure")
		slog.Warn("admin login failed", "username", username)
	}
	return ok
}

// LoginPage renders the login form, or sends signed-in admins to the dashboard.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.AuthFromCtx(r.Context()).IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", a.loginData("", ""))
}

// LoginSubmit processes the login form.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))

	if !authenticate(a.creds, username, r.PostFormValue("password"), r.PostFormValue("code")) {
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "login", a.loginData(username, "Invalid credentials."))
		return
	}

	if _, _, err := a.sessions.Create(w, username, auth.RoleAdmin); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("admin signed in", "username", username)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout clears the session cookie and returns to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (a *Auth) loginData(username, errMsg string) *render.PageData {
	return &render.PageData{
		Title: "Sign in",
		Data: map[string]any{
			"Username":  username,
			"Error":     errMsg,
			"TwoFactor": a.creds.TwoFactorEnabled(),
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	Role          string     `json:"role,omitempty"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// Login authenticates an API client. The body may be JSON or a form. On
// success the session cookie is set and the token is also returned for
// clients that prefer the Authorization header.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		if err := parseForm(w, r); err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "malformed form body", nil)
			return
		}
		req = loginRequest{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
			Code:     r.PostFormValue("code"),
		}
	}
	req.Username = strings.TrimSpace(req.Username)

	if !authenticate(a.creds, req.Username, req.Password, req.Code) {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid credentials", nil)
		return
	}

	token, expires, err := a.sessions.Create(w, req.Username, auth.RoleAdmin)
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Username:      req.Username,
		Role:          auth.RoleAdmin,
		Token:         token,
		ExpiresAt:     &expires,
	})
}

// Logout clears the session cookie. Tokens already handed out stay valid
// until they expire.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session reports who the caller is.
func (a *API) Session(w http.ResponseWriter, r *http.Request) {
	claims := a.sessions.Get(r)
	if claims == nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	resp := sessionResponse{Authenticated: true, Username: claims.Username, Role: claims.Role}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		resp.ExpiresAt = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}
