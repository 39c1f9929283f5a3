// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the content repositories on PostgreSQL using
// database/sql with the pgx driver. Schema lives in the database package's
// goose migrations.
package store

import (
	"database/sql"

	"chapterpress/internal/content"
)

// Repositories returns PostgreSQL-backed content repositories.
func Repositories(db *sql.DB) content.Repositories {
	return content.Repositories{
		Categories: NewCategoryStore(db),
		Series:     NewSeriesStore(db),
		Chapters:   NewChapterStore(db),
	}
}

var (
	_ content.CategoryRepository = (*CategoryStore)(nil)
	_ content.SeriesRepository   = (*SeriesStore)(nil)
	_ content.ChapterRepository  = (*ChapterStore)(nil)
)
