package content

import (
	"context"
	"fmt"

	"chapterpress/internal/auth"
	"chapterpress/internal/models"
)

// ListSeries returns series in display order, optionally restricted to
// one category.
func (s *Service) ListSeries(ctx context.Context, categoryID string) ([]models.Series, error) {
	items, err := s.series.List(ctx, SeriesFilter{CategoryID: categoryID})
	if err != nil {
		return nil, storeErr("list series", err)
	}
	sortSeries(items)
	return items, nil
}

// GetSeries looks a series up by id, then by slug.
func (s *Service) GetSeries(ctx context.Context, idOrSlug string) (*models.Series, error) {
	sr, err := s.series.FindByID(ctx, idOrSlug)
	if err != nil {
		return nil, storeErr("find series", err)
	}
	if sr == nil {
		if sr, err = s.series.FindBySlug(ctx, idOrSlug); err != nil {
			return nil, storeErr("find series", err)
		}
	}
	if sr == nil {
		return nil, ErrNotFound
	}
	return sr, nil
}

// CreateSeries validates in and inserts a new series under an existing category.
func (s *Service) CreateSeries(ctx context.Context, ac auth.Context, in SeriesInput) (*models.Series, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkCategoryRef(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkSeriesSlug(ctx, in.Slug, ""); err != nil {
		return nil, err
	}

	created, err := s.series.Create(ctx, &models.Series{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Order:       in.Order,
	})
	if err != nil {
		return nil, storeErr("create series", err)
	}
	s.changed(ctx, "series", "create")
	return created, nil
}

// UpdateSeries replaces the writable fields of series id.
func (s *Service) UpdateSeries(ctx context.Context, ac auth.Context, id string, in SeriesInput) (*models.Series, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	existing, err := s.series.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find series", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkCategoryRef(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.checkSeriesSlug(ctx, in.Slug, existing.ID); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Slug = in.Slug
	existing.Description = in.Description
	existing.CategoryID = in.CategoryID
	existing.Order = in.Order

	updated, err := s.series.Update(ctx, existing)
	if err != nil {
		return nil, storeErr("update series", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.changed(ctx, "series", "update")
	return updated, nil
}

// DeleteSeries removes series id. Series that still own chapters are not deleted.
func (s *Service) DeleteSeries(ctx context.Context, ac auth.Context, id string) error {
	if err := requireAdmin(ac); err != nil {
		return err
	}
	existing, err := s.series.FindByID(ctx, id)
	if err != nil {
		return storeErr("find series", err)
	}
	if existing == nil {
		return ErrNotFound
	}

	n, err := s.chapters.Count(ctx, ChapterFilter{SeriesID: existing.ID})
	if err != nil {
		return storeErr("count chapters", err)
	}
	if n > 0 {
		return fmt.Errorf("series %q has %d chapters: %w", existing.Slug, n, ErrHasDependents)
	}

	ok, err := s.series.Delete(ctx, existing.ID)
	if err != nil {
		return storeErr("delete series", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.changed(ctx, "series", "delete")
	return nil
}

func (s *Service) checkCategoryRef(ctx context.Context, id string) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return storeErr("find category", err)
	}
	if c == nil {
		return fieldError("categoryId", "categoryId does not reference an existing category")
	}
	return nil
}

func (s *Service) checkSeriesSlug(ctx context.Context, slug, selfID string) error {
	other, err := s.series.FindBySlug(ctx, slug)
	if err != nil {
		return storeErr("find series", err)
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("series slug %q: %w", slug, ErrDuplicateSlug)
	}
	return nil
}
