// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for chapterpress. Handlers
// are grouped by concern (api, admin, public, auth) and receive their
// dependencies through the handler struct.
package handlers

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"chapterpress/internal/auth"
	"chapterpress/internal/content"
	"chapterpress/internal/middleware"
	"chapterpress/internal/models"
	"chapterpress/internal/render"
)

// Admin groups the admin console handlers. All routes are mounted behind
// middleware.RequireAdmin.
type Admin struct {
	renderer   *render.Renderer
	svc        *content.Service
	creds      auth.Credentials
	sessionTTL time.Duration
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, svc *content.Service, creds auth.Credentials, sessionTTL time.Duration) *Admin {
	return &Admin{renderer: renderer, svc: svc, creds: creds, sessionTTL: sessionTTL}
}

var flashMessages = map[string]render.Flash{
	"created":        {Type: "success", Message: "Saved."},
	"updated":        {Type: "success", Message: "Changes saved."},
	"deleted":        {Type: "success", Message: "Deleted."},
	"published":      {Type: "success", Message: "Chapter published."},
	"unpublished":    {Type: "success", Message: "Chapter moved back to drafts."},
	"has-dependents": {Type: "error", Message: "Delete or move its children first."},
	"not-found":      {Type: "error", Message: "That entry no longer exists."},
	"failed":         {Type: "error", Message: "Something went wrong. Please try again."},
}

// flashes turns the ?flash= code set by a redirect into a message.
func flashes(r *http.Request) []render.Flash {
	if f, ok := flashMessages[r.URL.Query().Get("flash")]; ok {
		return []render.Flash{f}
	}
	return nil
}

func redirectFlash(w http.ResponseWriter, r *http.Request, path, code string) {
	http.Redirect(w, r, path+"?flash="+url.QueryEscape(code), http.StatusSeeOther)
}

// deleteFlash maps a delete outcome to a flash code.
func deleteFlash(err error) string {
	switch {
	case err == nil:
		return "deleted"
	case errors.Is(err, content.ErrHasDependents):
		return "has-dependents"
	case errors.Is(err, content.ErrNotFound):
		return "not-found"
	default:
		return "failed"
	}
}

// formFailure merges form parsing problems with a service error into
// per-field messages and picks the status for the re-rendered form.
func formFailure(err error, errs formErrors) (int, formErrors) {
	if err == nil {
		return http.StatusBadRequest, errs
	}
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		for k, v := range verr.Fields {
			errs[k] = v
		}
		return http.StatusBadRequest, errs
	case errors.Is(err, content.ErrDuplicateSlug):
		errs["slug"] = "Another entry already uses this slug."
		return http.StatusBadRequest, errs
	default:
		errs["form"] = "Something went wrong. Please try again."
		return http.StatusInternalServerError, errs
	}
}

func actor(r *http.Request) auth.Context {
	return middleware.AuthFromCtx(r.Context())
}

// Dashboard shows entity counts and the whole content tree.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	tree, err := a.svc.Tree(r.Context(), actor(r))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Flashes: flashes(r),
		Data:    map[string]any{"Stats": stats, "Tree": tree},
	})
}

// --- Categories ---

func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.svc.ListCategories(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: flashes(r),
		Data:    map[string]any{"Categories": cats},
	})
}

func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.categoryForm(w, r, http.StatusOK, "New category", "/admin/categories", content.CategoryInput{}, nil)
}

func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in, errs := categoryForm(r)
	var err error
	if len(errs) == 0 {
		if _, err = a.svc.CreateCategory(r.Context(), actor(r), in); err == nil {
			redirectFlash(w, r, "/admin/categories", "created")
			return
		}
	}
	status, errs := formFailure(err, errs)
	a.categoryForm(w, r, status, "New category", "/admin/categories", in, errs)
}

func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	c, err := a.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.missing(w, r, err)
		return
	}
	in := content.CategoryInput{Name: c.Name, Slug: c.Slug, Description: c.Description, Order: c.Order}
	a.categoryForm(w, r, http.StatusOK, "Edit category", "/admin/categories/"+c.ID, in, nil)
}

func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in, errs := categoryForm(r)
	var err error
	if len(errs) == 0 {
		if _, err = a.svc.UpdateCategory(r.Context(), actor(r), id, in); err == nil {
			redirectFlash(w, r, "/admin/categories", "updated")
			return
		}
		if errors.Is(err, content.ErrNotFound) {
			a.missing(w, r, err)
			return
		}
	}
	status, errs := formFailure(err, errs)
	a.categoryForm(w, r, status, "Edit category", "/admin/categories/"+id, in, errs)
}

func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	err := a.svc.DeleteCategory(r.Context(), actor(r), chi.URLParam(r, "id"))
	redirectFlash(w, r, "/admin/categories", deleteFlash(err))
}

func (a *Admin) categoryForm(w http.ResponseWriter, r *http.Request, status int, title, action string, in content.CategoryInput, errs formErrors) {
	a.renderer.PageStatus(w, r, status, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data:    map[string]any{"Action": action, "Form": in, "Errors": map[string]string(errs)},
	})
}

// --- Series ---

// SeriesList lists series, optionally only those of ?categoryId=.
func (a *Admin) SeriesList(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("categoryId")
	series, err := a.svc.ListSeries(r.Context(), filter)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	cats, err := a.svc.ListCategories(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	a.renderer.Page(w, r, "series_list", &render.PageData{
		Title:   "Series",
		Section: "series",
		Flashes: flashes(r),
		Data: map[string]any{
			"Series":         series,
			"Categories":     cats,
			"CategoryNames":  names,
			"FilterCategory": filter,
		},
	})
}

func (a *Admin) SeriesNew(w http.ResponseWriter, r *http.Request) {
	in := content.SeriesInput{CategoryID: r.URL.Query().Get("categoryId")}
	a.seriesForm(w, r, http.StatusOK, "New series", "/admin/series", in, nil)
}

func (a *Admin) SeriesCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in, errs := seriesForm(r)
	var err error
	if len(errs) == 0 {
		if _, err = a.svc.CreateSeries(r.Context(), actor(r), in); err == nil {
			redirectFlash(w, r, "/admin/series", "created")
			return
		}
	}
	status, errs := formFailure(err, errs)
	a.seriesForm(w, r, status, "New series", "/admin/series", in, errs)
}

func (a *Admin) SeriesEdit(w http.ResponseWriter, r *http.Request) {
	s, err := a.svc.GetSeries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.missing(w, r, err)
		return
	}
	in := content.SeriesInput{Name: s.Name, Slug: s.Slug, Description: s.Description, CategoryID: s.CategoryID, Order: s.Order}
	a.seriesForm(w, r, http.StatusOK, "Edit series", "/admin/series/"+s.ID, in, nil)
}

func (a *Admin) SeriesUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in, errs := seriesForm(r)
	var err error
	if len(errs) == 0 {
		if _, err = a.svc.UpdateSeries(r.Context(), actor(r), id, in); err == nil {
			redirectFlash(w, r, "/admin/series", "updated")
			return
		}
		if errors.Is(err, content.ErrNotFound) {
			a.missing(w, r, err)
			return
		}
	}
	status, errs := formFailure(err, errs)
	a.seriesForm(w, r, status, "Edit series", "/admin/series/"+id, in, errs)
}

func (a *Admin) SeriesDelete(w http.ResponseWriter, r *http.Request) {
	err := a.svc.DeleteSeries(r.Context(), actor(r), chi.URLParam(r, "id"))
	redirectFlash(w, r, "/admin/series", deleteFlash(err))
}

func (a *Admin) seriesForm(w http.ResponseWriter, r *http.Request, status int, title, action string, in content.SeriesInput, errs formErrors) {
	cats, err := a.svc.ListCategories(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.PageStatus(w, r, status, "series_form", &render.PageData{
		Title:   title,
		Section: "series",
		Data: map[string]any{
			"Action":     action,
			"Form":       in,
			"Errors":     map[string]string(errs),
			"Categories": cats,
		},
	})
}

// --- Chapters ---

// ChaptersList lists chapters, drafts included, optionally only those of ?seriesId=.
func (a *Admin) ChaptersList(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("seriesId")
	chapters, err := a.svc.ListChapters(r.Context(), actor(r), filter)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	series, err := a.svc.ListSeries(r.Context(), "")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	names := make(map[string]string, len(series))
	for _, s := range series {
		names[s.ID] = s.Name
	}
	a.renderer.Page(w, r, "chapters", &render.PageData{
		Title:   "Chapters",
		Section: "chapters",
		Flashes: flashes(r),
		Data: map[string]any{
			"Chapters":     chapters,
			"SeriesList":   series,
			"SeriesNames":  names,
			"FilterSeries": filter,
		},
	})
}

func (a *Admin) ChapterNew(w http.ResponseWriter, r *http.Request) {
	in := content.ChapterInput{SeriesID: r.URL.Query().Get("seriesId"), Format: models.FormatHTML}
	a.chapterForm(w, r, http.StatusOK, "New chapter", "/admin/chapters", in, nil)
}

func (a *Admin) ChapterCreate(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in, errs := chapterForm(r)
	var err error
	if len(errs) == 0 {
		if _, err = a.svc.CreateChapter(r.Context(), actor(r), in); err == nil {
			redirectFlash(w, r, "/admin/chapters", "created")
			return
		}
	}
	status, errs := formFailure(err, errs)
	a.chapterForm(w, r, status, "New chapter", "/admin/chapters", in, errs)
}

func (a *Admin) ChapterEdit(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.GetChapter(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.missing(w, r, err)
		return
	}
	in := content.ChapterInput{
		Title:     d.Title,
		Slug:      d.Slug,
		Content:   d.Content,
		Format:    d.Format,
		VideoURL:  d.VideoURL,
		SeriesID:  d.SeriesID,
		Order:     d.Order,
		Published: d.Published,
	}
	a.chapterForm(w, r, http.StatusOK, "Edit chapter", "/admin/chapters/"+d.ID, in, nil)
}

func (a *Admin) ChapterUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in, errs := chapterForm(r)
	var err error
	if len(errs) == 0 {
		if _, err = a.svc.UpdateChapter(r.Context(), actor(r), id, in); err == nil {
			redirectFlash(w, r, "/admin/chapters", "updated")
			return
		}
		if errors.Is(err, content.ErrNotFound) {
			a.missing(w, r, err)
			return
		}
	}
	status, errs := formFailure(err, errs)
	a.chapterForm(w, r, status, "Edit chapter", "/admin/chapters/"+id, in, errs)
}

// ChapterPublish sets the published flag from the "published" form field.
func (a *Admin) ChapterPublish(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	published := formBool(r.PostFormValue("published"))
	ch, err := a.svc.SetChapterPublished(r.Context(), actor(r), chi.URLParam(r, "id"), published)
	back := "/admin/chapters"
	switch {
	case errors.Is(err, content.ErrNotFound):
		redirectFlash(w, r, back, "not-found")
	case err != nil:
		redirectFlash(w, r, back, "failed")
	case ch.Published:
		redirectFlash(w, r, back, "published")
	default:
		redirectFlash(w, r, back, "unpublished")
	}
}

func (a *Admin) ChapterDelete(w http.ResponseWriter, r *http.Request) {
	err := a.svc.DeleteChapter(r.Context(), actor(r), chi.URLParam(r, "id"))
	redirectFlash(w, r, "/admin/chapters", deleteFlash(err))
}

func (a *Admin) chapterForm(w http.ResponseWriter, r *http.Request, status int, title, action string, in content.ChapterInput, errs formErrors) {
	series, err := a.svc.ListSeries(r.Context(), "")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.renderer.PageStatus(w, r, status, "chapter_form", &render.PageData{
		Title:   title,
		Section: "chapters",
		Data: map[string]any{
			"Action":     action,
			"Form":       in,
			"Errors":     map[string]string(errs),
			"SeriesList": series,
		},
	})
}

// missing answers a lookup failure on an edit page.
func (a *Admin) missing(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, content.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// --- Settings ---

// Settings shows session details and the state of two-factor sign-in.
// While it is off, a fresh TOTP secret and its enrollment QR code are
// offered; the secret only takes effect once it is put in the environment.
func (a *Admin) Settings(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"TwoFactor":  a.creds.TwoFactorEnabled(),
		"SessionTTL": a.sessionTTL.String(),
		"QRCode":     template.URL(""),
		"Secret":     "",
	}

	if !a.creds.TwoFactorEnabled() {
		account := actor(r).Username
		if account == "" {
			account = "admin"
		}
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      "chapterpress",
			AccountName: account,
		})
		if err != nil {
			slog.Error("totp generate failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
		if err != nil {
			slog.Error("qr encode failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data["QRCode"] = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
		data["Secret"] = key.Secret()
	}

	a.renderer.Page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Data:    data,
	})
}
