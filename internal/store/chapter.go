// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chapterpress/internal/content"
	"chapterpress/internal/models"
)

// ChapterStore manages chapters in PostgreSQL.
type ChapterStore struct {
	db *sql.DB
}

// NewChapterStore returns a new ChapterStore.
func NewChapterStore(db *sql.DB) *ChapterStore {
	return &ChapterStore{db: db}
}

const chapterColumns = `id, title, slug, content, format, video_url, series_id, sort_order, published, created_at, updated_at`

func scanChapter(row scanner) (*models.Chapter, error) {
	var c models.Chapter
	err := row.Scan(
		&c.ID, &c.Title, &c.Slug, &c.Content, &c.Format, &c.VideoURL,
		&c.SeriesID, &c.Order, &c.Published, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func chapterWhere(f content.ChapterFilter) (string, []any, bool) {
	var conds []string
	var args []any
	if f.SeriesID != "" {
		if !validID(f.SeriesID) {
			return "", nil, false
		}
		args = append(args, f.SeriesID)
		conds = append(conds, fmt.Sprintf("series_id = $%d", len(args)))
	}
	if f.PublishedOnly {
		conds = append(conds, "published")
	}
	if len(conds) == 0 {
		return "", nil, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

// List returns chapters matching f ordered by sort_order, then creation time.
func (s *ChapterStore) List(ctx context.Context, f content.ChapterFilter) ([]models.Chapter, error) {
	where, args, ok := chapterWhere(f)
	if !ok {
		return []models.Chapter{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+chapterColumns+` FROM chapters`+where+` ORDER BY sort_order, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	items := []models.Chapter{}
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a chapter by ID. Returns nil if not found.
func (s *ChapterStore) FindByID(ctx context.Context, id string) (*models.Chapter, error) {
	if !validID(id) {
		return nil, nil
	}
	return s.findOne(ctx, "id", id)
}

// FindBySlug retrieves a chapter by slug. Returns nil if not found.
func (s *ChapterStore) FindBySlug(ctx context.Context, slug string) (*models.Chapter, error) {
	return s.findOne(ctx, "slug", slug)
}

func (s *ChapterStore) findOne(ctx context.Context, column, value string) (*models.Chapter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+chapterColumns+` FROM chapters WHERE `+column+` = $1`, value)
	c, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find chapter by %s: %w", column, err)
	}
	return c, nil
}

// Create inserts a new chapter and returns it.
func (s *ChapterStore) Create(ctx context.Context, c *models.Chapter) (*models.Chapter, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO chapters (title, slug, content, format, video_url, series_id, sort_order, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+chapterColumns,
		c.Title, c.Slug, c.Content, c.Format, c.VideoURL, c.SeriesID, c.Order, c.Published,
	)
	result, err := scanChapter(row)
	if err != nil {
		return nil, fmt.Errorf("create chapter: %w", translate(err))
	}
	return result, nil
}

// Update modifies an existing chapter. Returns nil if it no longer exists.
func (s *ChapterStore) Update(ctx context.Context, c *models.Chapter) (*models.Chapter, error) {
	if !validID(c.ID) {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE chapters SET
			title = $1, slug = $2, content = $3, format = $4, video_url = $5,
			series_id = $6, sort_order = $7, published = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+chapterColumns,
		c.Title, c.Slug, c.Content, c.Format, c.VideoURL, c.SeriesID, c.Order, c.Published, c.ID,
	)
	result, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update chapter: %w", translate(err))
	}
	return result, nil
}

// SetPublished changes only the published flag. Returns nil if not found.
func (s *ChapterStore) SetPublished(ctx context.Context, id string, published bool) (*models.Chapter, error) {
	if !validID(id) {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE chapters SET published = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+chapterColumns,
		published, id,
	)
	result, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set chapter published: %w", err)
	}
	return result, nil
}

// Delete removes a chapter by ID and reports whether a row was removed.
func (s *ChapterStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	return execDelete(ctx, s.db, `DELETE FROM chapters WHERE id = $1`, id)
}

// Count returns the number of chapters matching f.
func (s *ChapterStore) Count(ctx context.Context, f content.ChapterFilter) (int, error) {
	where, args, ok := chapterWhere(f)
	if !ok {
		return 0, nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chapters`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return n, nil
}
