package content

import (
	"strings"

	"chapterpress/internal/models"
	"chapterpress/internal/slug"
)

// CategoryInput is the writable part of a Category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,slug,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Order       int    `json:"order"`
}

// SeriesInput is the writable part of a Series.
type SeriesInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,slug,max=200"`
	Description string `json:"description" validate:"max=2000"`
	CategoryID  string `json:"categoryId" validate:"required"`
	Order       int    `json:"order"`
}

// ChapterInput is the writable part of a Chapter.
type ChapterInput struct {
	Title     string               `json:"title" validate:"required,max=300"`
	Slug      string               `json:"slug" validate:"required,slug,max=200"`
	Content   string               `json:"content" validate:"required"`
	Format    models.ContentFormat `json:"format" validate:"oneof=html markdown"`
	VideoURL  string               `json:"videoUrl" validate:"omitempty,weburl,max=2048"`
	SeriesID  string               `json:"seriesId" validate:"required"`
	Order     int                  `json:"order"`
	Published bool                 `json:"published"`
}

// normalizeSlug canonicalises an explicit slug, or derives one from the
// display name when none was given.
func normalizeSlug(explicit, name string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return slug.Generate(s)
	}
	return slug.Generate(name)
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = normalizeSlug(in.Slug, in.Name)
}

func (in *SeriesInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.Slug = normalizeSlug(in.Slug, in.Name)
}

func (in *ChapterInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	in.SeriesID = strings.TrimSpace(in.SeriesID)
	in.Slug = normalizeSlug(in.Slug, in.Title)
	if in.Format == "" {
		in.Format = models.FormatHTML
	}
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
}
