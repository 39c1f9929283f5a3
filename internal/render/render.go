// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render parses the embedded admin and public templates and
// executes them. Admin pages are paired with the admin base layout, public
// pages with the site layout. The login page is standalone.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chapterpress/internal/auth"
	"chapterpress/internal/middleware"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds everything a template can see.
type PageData struct {
	Title     string         // <title> and page heading
	Section   string         // active admin nav entry
	Auth      auth.Context   // caller, filled in by Page
	CSRFToken string         // filled in by Page
	Data      map[string]any // page-specific values
	Flashes   []Flash
}

// Flash is a one-time notification shown above the page content.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// Renderer holds the parsed template sets.
type Renderer struct {
	admin  map[string]*template.Template
	public map[string]*template.Template
}

// standaloneTemplates render as full documents without the admin layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

var funcMap = template.FuncMap{
	"activeClass": func(current, target string) string {
		if current == target {
			return "active"
		}
		return ""
	},
	"fmtDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"excerpt": func(s string, n int) string {
		s = strings.TrimSpace(s)
		if r := []rune(s); len(r) > n {
			return string(r[:n]) + "…"
		}
		return s
	},
	"year": func() int { return time.Now().Year() },
}

// New parses every admin and public page template.
func New() (*Renderer, error) {
	admin, err := parseSet("templates/admin", "base.html", standaloneTemplates)
	if err != nil {
		return nil, err
	}
	public, err := parseSet("templates/public", "site.html", nil)
	if err != nil {
		return nil, err
	}
	return &Renderer{admin: admin, public: public}, nil
}

func parseSet(dir, layout string, standalone map[string]bool) (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(templateFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	set := make(map[string]*template.Template)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == layout {
			continue
		}
		key := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standalone[key] {
			tmpl, err = template.New(name).Funcs(funcMap).ParseFS(templateFS, dir+"/"+name)
		} else {
			tmpl, err = template.New(layout).Funcs(funcMap).ParseFS(templateFS, dir+"/"+layout, dir+"/"+name)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		set[key] = tmpl
	}
	return set, nil
}

// Page renders an admin page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders an admin page with the given status. The caller's auth
// context and CSRF token are injected from the request.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}
	data.Auth = middleware.AuthFromCtx(r.Context())
	data.CSRFToken = middleware.GetCSRFToken(r)

	root := "base.html"
	if standaloneTemplates[name] {
		root = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, root, data); err != nil {
		slog.Error("render admin page failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Public executes a public page into a byte slice so the caller can cache
// the result before writing it.
func (rn *Renderer) Public(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.public[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "site.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
