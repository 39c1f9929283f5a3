package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chapterpress/internal/auth"
	"chapterpress/internal/content"
	"chapterpress/internal/middleware"
	"chapterpress/internal/session"
)

// API serves the JSON interface under /api. Every handler passes the
// request's auth.Context to the content service, which decides what the
// caller may see or change.
type API struct {
	svc      *content.Service
	sessions *session.Store
	creds    auth.Credentials
}

// NewAPI creates the JSON API handler group.
func NewAPI(svc *content.Service, sessions *session.Store, creds auth.Credentials) *API {
	return &API{svc: svc, sessions: sessions, creds: creds}
}

// --- Categories ---

func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := a.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in content.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := a.svc.CreateCategory(r.Context(), middleware.AuthFromCtx(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in content.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := a.svc.UpdateCategory(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := a.svc.DeleteCategory(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"))
	a.deleted(w, err)
}

// --- Series ---

// ListSeries lists all series, or those of ?categoryId= when given.
func (a *API) ListSeries(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListSeries(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) GetSeries(w http.ResponseWriter, r *http.Request) {
	s, err := a.svc.GetSeries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var in content.SeriesInput
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := a.svc.CreateSeries(r.Context(), middleware.AuthFromCtx(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (a *API) UpdateSeries(w http.ResponseWriter, r *http.Request) {
	var in content.SeriesInput
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := a.svc.UpdateSeries(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	err := a.svc.DeleteSeries(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"))
	a.deleted(w, err)
}

// --- Chapters ---

// ListChapters lists chapters, or those of ?seriesId= when given. Drafts
// are only included for admins.
func (a *API) ListChapters(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListChapters(r.Context(), middleware.AuthFromCtx(r.Context()), r.URL.Query().Get("seriesId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetChapter returns a chapter with its series and category resolved.
func (a *API) GetChapter(w http.ResponseWriter, r *http.Request) {
	ch, err := a.svc.GetChapter(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (a *API) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var in content.ChapterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ch, err := a.svc.CreateChapter(r.Context(), middleware.AuthFromCtx(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

func (a *API) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	var in content.ChapterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ch, err := a.svc.UpdateChapter(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// PatchChapter changes only the published flag: {"published": true}.
func (a *API) PatchChapter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Published *bool `json:"published"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Published == nil {
		writeError(w, http.StatusBadRequest, codeValidation, "validation failed",
			map[string]string{"published": "published is required"})
		return
	}
	ch, err := a.svc.SetChapterPublished(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"), *body.Published)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (a *API) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	err := a.svc.DeleteChapter(r.Context(), middleware.AuthFromCtx(r.Context()), chi.URLParam(r, "id"))
	a.deleted(w, err)
}

func (a *API) deleted(w http.ResponseWriter, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Tree and stats ---

// Tree returns the whole hierarchy; drafts are included only for admins.
func (a *API) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := a.svc.Tree(r.Context(), middleware.AuthFromCtx(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Stats returns entity counts. Admin only.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	if !middleware.AuthFromCtx(r.Context()).IsAdmin() {
		writeServiceError(w, content.ErrUnauthorized)
		return
	}
	st, err := a.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
