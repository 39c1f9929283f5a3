// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the handler
// tests. Handlers run against the in-memory content repositories, so no
// database is needed.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"chapterpress/internal/auth"
	"chapterpress/internal/content"
	"chapterpress/internal/content/contenttest"
	"chapterpress/internal/middleware"
	"chapterpress/internal/models"
	"chapterpress/internal/render"
	"chapterpress/internal/session"
)

var (
	testCreds = auth.Credentials{Username: "admin", Password: "s3cret"}
	adminAuth = auth.Context{Authenticated: true, Role: auth.RoleAdmin, Username: "admin"}
)

type testEnv struct {
	mem      *contenttest.Memory
	svc      *content.Service
	renderer *render.Renderer
	sessions *session.Store
	api      *API
	admin    *Admin
	auth     *Auth
	public   *Public
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := contenttest.New()
	svc := content.NewService(mem.Repositories())
	rn, err := render.New()
	require.NoError(t, err)
	tm, err := auth.NewTokenManager("handler-test-secret", time.Hour)
	require.NoError(t, err)
	sessions := session.NewStore(tm, false)

	return &testEnv{
		mem:      mem,
		svc:      svc,
		renderer: rn,
		sessions: sessions,
		api:      NewAPI(svc, sessions, testCreds),
		admin:    NewAdmin(rn, svc, testCreds, time.Hour),
		auth:     NewAuth(rn, sessions, testCreds),
		public:   NewPublic(rn, svc, nil),
	}
}

// seeded holds the ids of the fixture hierarchy created by seed.
type seeded struct {
	category *models.Category
	series   *models.Series
	chapter  *models.Chapter
	draft    *models.Chapter
}

// seed creates IP Basics / Overview with one published and one draft chapter.
func (e *testEnv) seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	cat, err := e.svc.CreateCategory(ctx, adminAuth, content.CategoryInput{Name: "IP Basics", Slug: "ip-basics"})
	require.NoError(t, err)
	sr, err := e.svc.CreateSeries(ctx, adminAuth, content.SeriesInput{Name: "Overview", Slug: "overview", CategoryID: cat.ID})
	require.NoError(t, err)
	ch, err := e.svc.CreateChapter(ctx, adminAuth, content.ChapterInput{
		Title: "What is IP", Slug: "what-is-ip", Content: "<p>An address.</p>", SeriesID: sr.ID, Published: true,
	})
	require.NoError(t, err)
	draft, err := e.svc.CreateChapter(ctx, adminAuth, content.ChapterInput{
		Title: "Subnets", Slug: "subnets", Content: "## Masks\n", Format: models.FormatMarkdown, SeriesID: sr.ID, Order: 1,
	})
	require.NoError(t, err)
	return seeded{category: cat, series: sr, chapter: ch, draft: draft}
}

// serve routes a single request through a chi router that knows pattern,
// so URL parameters resolve the same way they do in production.
func serve(h http.HandlerFunc, method, pattern string, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		rd = &buf
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// asAdmin attaches an authenticated admin to the request context.
func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithAuth(req.Context(), adminAuth))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}
