// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentFormat tells the public view how to turn Chapter.Content into HTML.
type ContentFormat string

const (
	FormatHTML     ContentFormat = "html"
	FormatMarkdown ContentFormat = "markdown"
)

// Chapter is the leaf content unit. Unpublished chapters are only visible
// to authenticated callers.
type Chapter struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Content   string        `json:"content"`
	Format    ContentFormat `json:"format"`
	VideoURL  string        `json:"videoUrl,omitempty"`
	SeriesID  string        `json:"seriesId"`
	Order     int           `json:"order"`
	Published bool          `json:"published"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// IsMarkdown returns true if the chapter body is Markdown source.
func (c *Chapter) IsMarkdown() bool {
	return c.Format == FormatMarkdown
}

// SeriesRef is the slice of a Series embedded in a chapter detail response.
type SeriesRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	CategoryID string `json:"categoryId"`
}

// CategoryRef is the slice of a Category embedded in a chapter detail response.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ChapterDetail is a chapter with its parent series and category resolved.
// Either reference is nil when the parent no longer exists.
type ChapterDetail struct {
	Chapter
	Series   *SeriesRef   `json:"series"`
	Category *CategoryRef `json:"category"`
}

// Stats holds entity counts for the admin dashboard.
type Stats struct {
	Categories int `json:"categories"`
	Series     int `json:"series"`
	Chapters   int `json:"chapters"`
	Published  int `json:"published"`
}
