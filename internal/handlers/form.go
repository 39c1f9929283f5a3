package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"chapterpress/internal/content"
	"chapterpress/internal/middleware"
	"chapterpress/internal/models"
)

// maxBodyBytes bounds JSON and form request bodies. Chapter bodies are the
// largest payload.
const maxBodyBytes = middleware.MaxBodyBytes

// formErrors collects problems found while reading a form, keyed like the
// JSON field names so they can be merged with service validation errors.
type formErrors map[string]string

func parseOrder(raw string, errs formErrors) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs["order"] = "order must be a whole number"
	}
	return n
}

func formBool(raw string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return b || raw == "on"
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return r.ParseForm()
}

func categoryForm(r *http.Request) (content.CategoryInput, formErrors) {
	errs := formErrors{}
	in := content.CategoryInput{
		Name:        r.PostFormValue("name"),
		Slug:        r.PostFormValue("slug"),
		Description: r.PostFormValue("description"),
		Order:       parseOrder(r.PostFormValue("order"), errs),
	}
	return in, errs
}

func seriesForm(r *http.Request) (content.SeriesInput, formErrors) {
	errs := formErrors{}
	in := content.SeriesInput{
		Name:        r.PostFormValue("name"),
		Slug:        r.PostFormValue("slug"),
		Description: r.PostFormValue("description"),
		CategoryID:  r.PostFormValue("categoryId"),
		Order:       parseOrder(r.PostFormValue("order"), errs),
	}
	return in, errs
}

func chapterForm(r *http.Request) (content.ChapterInput, formErrors) {
	errs := formErrors{}
	in := content.ChapterInput{
		Title:     r.PostFormValue("title"),
		Slug:      r.PostFormValue("slug"),
		Content:   r.PostFormValue("content"),
		Format:    models.ContentFormat(r.PostFormValue("format")),
		VideoURL:  r.PostFormValue("videoUrl"),
		SeriesID:  r.PostFormValue("seriesId"),
		Order:     parseOrder(r.PostFormValue("order"), errs),
		Published: formBool(r.PostFormValue("published")),
	}
	return in, errs
}
