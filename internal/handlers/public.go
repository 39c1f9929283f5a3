// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chapterpress/internal/auth"
	"chapterpress/internal/cache"
	"chapterpress/internal/content"
	"chapterpress/internal/markdown"
	"chapterpress/internal/models"
	"chapterpress/internal/render"
)

// Public serves the reading pages. Pages are always rendered as an
// anonymous visitor sees them, so drafts never reach the page cache.
// The cache is checked first and filled on a miss.
type Public struct {
	renderer  *render.Renderer
	svc       *content.Service
	pageCache *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(renderer *render.Renderer, svc *content.Service, pageCache *cache.PageCache) *Public {
	return &Public{renderer: renderer, svc: svc, pageCache: pageCache}
}

// Home lists all categories.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData, error) {
		cats, err := p.svc.ListCategories(r.Context())
		if err != nil {
			return "", nil, err
		}
		return "home", &render.PageData{Data: map[string]any{"Categories": cats}}, nil
	})
}

// Category lists the series of one category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData, error) {
		cat, err := p.svc.GetCategory(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			return "", nil, err
		}
		series, err := p.svc.ListSeries(r.Context(), cat.ID)
		if err != nil {
			return "", nil, err
		}
		return "category", &render.PageData{
			Title: cat.Name,
			Data:  map[string]any{"Category": cat, "Series": series},
		}, nil
	})
}

// Series lists the published chapters of one series.
func (p *Public) Series(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData, error) {
		sr, err := p.svc.GetSeries(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			return "", nil, err
		}
		chapters, err := p.svc.ListChapters(r.Context(), auth.Anonymous, sr.ID)
		if err != nil {
			return "", nil, err
		}
		var cat *models.Category
		if c, err := p.svc.GetCategory(r.Context(), sr.CategoryID); err == nil {
			cat = c
		} else if !errors.Is(err, content.ErrNotFound) {
			return "", nil, err
		}
		return "series", &render.PageData{
			Title: sr.Name,
			Data:  map[string]any{"Series": sr, "Category": cat, "Chapters": chapters},
		}, nil
	})
}

// Chapter renders one published chapter with its video and links to the
// neighbouring chapters of the same series.
func (p *Public) Chapter(w http.ResponseWriter, r *http.Request) {
	p.cached(w, r, func() (string, *render.PageData, error) {
		detail, err := p.svc.GetChapter(r.Context(), auth.Anonymous, chi.URLParam(r, "slug"))
		if err != nil {
			return "", nil, err
		}
		body, err := markdown.ChapterHTML(detail.Format, detail.Content)
		if err != nil {
			return "", nil, err
		}
		siblings, err := p.svc.ListChapters(r.Context(), auth.Anonymous, detail.SeriesID)
		if err != nil {
			return "", nil, err
		}
		prev, next := neighbours(siblings, detail.ID)

		return "chapter", &render.PageData{
			Title: detail.Title,
			Data: map[string]any{
				"Chapter":    detail,
				"Body":       body,
				"VideoEmbed": markdown.EmbedURL(detail.VideoURL),
				"Prev":       prev,
				"Next":       next,
			},
		}, nil
	})
}

// NotFound renders the public 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	out, err := p.renderer.Public("not_found", &render.PageData{Title: "Not found"})
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(out)
}

// cached serves r.URL.Path from the page cache, or builds the page with
// load, renders it and stores the result. Only successful pages are cached.
func (p *Public) cached(w http.ResponseWriter, r *http.Request, load func() (string, *render.PageData, error)) {
	key := r.URL.Path
	if page, ok := p.pageCache.Get(r.Context(), key); ok {
		writeHTML(w, page, "HIT")
		return
	}

	name, data, err := load()
	if errors.Is(err, content.ErrNotFound) {
		p.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("public page failed", "path", key, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page, err := p.renderer.Public(name, data)
	if err != nil {
		slog.Error("render public page failed", "path", key, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(r.Context(), key, page)
	writeHTML(w, page, "MISS")
}

func writeHTML(w http.ResponseWriter, page []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	_, _ = w.Write(page)
}

// neighbours returns the chapters before and after id in an ordered list.
func neighbours(chapters []models.Chapter, id string) (prev, next *models.Chapter) {
	for i := range chapters {
		if chapters[i].ID != id {
			continue
		}
		if i > 0 {
			prev = &chapters[i-1]
		}
		if i+1 < len(chapters) {
			next = &chapters[i+1]
		}
		break
	}
	return prev, next
}
