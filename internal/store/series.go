package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chapterpress/internal/content"
	"chapterpress/internal/models"
)

// SeriesStore manages series in PostgreSQL.
type SeriesStore struct {
	db *sql.DB
}

// NewSeriesStore returns a new SeriesStore.
func NewSeriesStore(db *sql.DB) *SeriesStore {
	return &SeriesStore{db: db}
}

const seriesColumns = `id, name, slug, description, category_id, sort_order, created_at, updated_at`

func scanSeries(row scanner) (*models.Series, error) {
	var s models.Series
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.CategoryID, &s.Order, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// seriesWhere builds the WHERE clause for f. An unparseable category id
// matches nothing.
func seriesWhere(f content.SeriesFilter) (string, []any, bool) {
	if f.CategoryID == "" {
		return "", nil, true
	}
	if !validID(f.CategoryID) {
		return "", nil, false
	}
	return ` WHERE category_id = $1`, []any{f.CategoryID}, true
}

// List returns series matching f ordered by sort_order, then creation time.
func (s *SeriesStore) List(ctx context.Context, f content.SeriesFilter) ([]models.Series, error) {
	where, args, ok := seriesWhere(f)
	if !ok {
		return []models.Series{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+seriesColumns+` FROM series`+where+` ORDER BY sort_order, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	items := []models.Series{}
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		items = append(items, *sr)
	}
	return items, rows.Err()
}

// FindByID retrieves a series by ID. Returns nil if not found.
func (s *SeriesStore) FindByID(ctx context.Context, id string) (*models.Series, error) {
	if !validID(id) {
		return nil, nil
	}
	return s.findOne(ctx, "id", id)
}

// FindBySlug retrieves a series by slug. Returns nil if not found.
func (s *SeriesStore) FindBySlug(ctx context.Context, slug string) (*models.Series, error) {
	return s.findOne(ctx, "slug", slug)
}

func (s *SeriesStore) findOne(ctx context.Context, column, value string) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE `+column+` = $1`, value)
	sr, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find series by %s: %w", column, err)
	}
	return sr, nil
}

// Create inserts a new series and returns it.
func (s *SeriesStore) Create(ctx context.Context, sr *models.Series) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO series (name, slug, description, category_id, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+seriesColumns,
		sr.Name, sr.Slug, sr.Description, sr.CategoryID, sr.Order,
	)
	result, err := scanSeries(row)
	if err != nil {
		return nil, fmt.Errorf("create series: %w", translate(err))
	}
	return result, nil
}

// Update modifies an existing series. Returns nil if it no longer exists.
func (s *SeriesStore) Update(ctx context.Context, sr *models.Series) (*models.Series, error) {
	if !validID(sr.ID) {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE series SET
			name = $1, slug = $2, description = $3, category_id = $4,
			sort_order = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+seriesColumns,
		sr.Name, sr.Slug, sr.Description, sr.CategoryID, sr.Order, sr.ID,
	)
	result, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update series: %w", translate(err))
	}
	return result, nil
}

// Delete removes a series by ID and reports whether a row was removed.
func (s *SeriesStore) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	return execDelete(ctx, s.db, `DELETE FROM series WHERE id = $1`, id)
}

// Count returns the number of series matching f.
func (s *SeriesStore) Count(ctx context.Context, f content.SeriesFilter) (int, error) {
	where, args, ok := seriesWhere(f)
	if !ok {
		return 0, nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM series`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count series: %w", err)
	}
	return n, nil
}
