// Package router sets up all HTTP routes and middleware chains for
// chapterpress. Routes are organised into the JSON API, the admin console
// and the public reading pages, each with its own middleware stack.
package router

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chapterpress/internal/handlers"
	"chapterpress/internal/metrics"
	"chapterpress/internal/middleware"
	"chapterpress/internal/session"
	"chapterpress/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions *session.Store
	API      *handlers.API
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Public   *handlers.Public

	CORSOrigins    []string
	LoginRateLimit int  // attempts per minute per client IP
	SecureCookies  bool // CSRF cookie Secure flag

	// Ready reports whether the store is reachable. nil means always ready.
	Ready func(ctx context.Context) error
}

// New creates the configured chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadAuth(d.Sessions))

	r.Get("/health", healthHandler(d.Ready))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Handle("/static/*", staticHandler())

	loginLimit := middleware.RateLimit(d.LoginRateLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(d.CORSOrigins))

		// Login must stay reachable without a token.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.With(loginLimit).Post("/login", d.API.Login)
			r.Post("/logout", d.API.Logout)
			r.Get("/session", d.API.Session)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIAuth)

			categories := func(r chi.Router) {
				r.Get("/", d.API.ListCategories)
				r.Post("/", d.API.CreateCategory)
				r.Get("/{id}", d.API.GetCategory)
				r.Put("/{id}", d.API.UpdateCategory)
				r.Delete("/{id}", d.API.DeleteCategory)
			}
			r.Route("/categories", categories)
			r.Route("/category", categories)

			r.Route("/series", func(r chi.Router) {
				r.Get("/", d.API.ListSeries)
				r.Post("/", d.API.CreateSeries)
				r.Get("/{id}", d.API.GetSeries)
				r.Put("/{id}", d.API.UpdateSeries)
				r.Delete("/{id}", d.API.DeleteSeries)
			})

			chapters := func(r chi.Router) {
				r.Get("/", d.API.ListChapters)
				r.Post("/", d.API.CreateChapter)
				r.Get("/{id}", d.API.GetChapter)
				r.Put("/{id}", d.API.UpdateChapter)
				r.Patch("/{id}", d.API.PatchChapter)
				r.Delete("/{id}", d.API.DeleteChapter)
			}
			r.Route("/chapters", chapters)
			r.Route("/chapter", chapters)

			r.Get("/tree", d.API.Tree)
			r.With(middleware.NoStore).Get("/stats", d.API.Stats)
		})

		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.Get("/login", d.Auth.LoginPage)
		r.With(loginLimit).Post("/login", d.Auth.LoginSubmit)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/", d.Admin.Dashboard)
			r.Get("/dashboard", d.Admin.Dashboard)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Admin.CategoriesList)
				r.Get("/new", d.Admin.CategoryNew)
				r.Post("/", d.Admin.CategoryCreate)
				r.Get("/{id}/edit", d.Admin.CategoryEdit)
				r.Post("/{id}", d.Admin.CategoryUpdate)
				r.Post("/{id}/delete", d.Admin.CategoryDelete)
			})

			r.Route("/series", func(r chi.Router) {
				r.Get("/", d.Admin.SeriesList)
				r.Get("/new", d.Admin.SeriesNew)
				r.Post("/", d.Admin.SeriesCreate)
				r.Get("/{id}/edit", d.Admin.SeriesEdit)
				r.Post("/{id}", d.Admin.SeriesUpdate)
				r.Post("/{id}/delete", d.Admin.SeriesDelete)
			})

			r.Route("/chapters", func(r chi.Router) {
				r.Get("/", d.Admin.ChaptersList)
				r.Get("/new", d.Admin.ChapterNew)
				r.Post("/", d.Admin.ChapterCreate)
				r.Get("/{id}/edit", d.Admin.ChapterEdit)
				r.Post("/{id}", d.Admin.ChapterUpdate)
				r.Post("/{id}/publish", d.Admin.ChapterPublish)
				r.Post("/{id}/delete", d.Admin.ChapterDelete)
			})

			r.Get("/settings", d.Admin.Settings)
		})
	})

	r.Get("/", d.Public.Home)
	r.Get("/category/{slug}", d.Public.Category)
	r.Get("/series/{slug}", d.Public.Series)
	r.Get("/chapter/{slug}", d.Public.Chapter)
	r.NotFound(d.Public.NotFound)

	return r
}

// healthHandler reports {"status":"ok"}, or 503 when the store is unreachable.
func healthHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"no such endpoint"}}` + "\n"))
}

func apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":{"code":"METHOD_NOT_ALLOWED","message":"method not allowed"}}` + "\n"))
}
