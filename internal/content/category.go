package content

import (
	"context"
	"fmt"

	"chapterpress/internal/auth"
	"chapterpress/internal/models"
)

// ListCategories returns all categories in display order.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	sortCategories(items)
	return items, nil
}

// GetCategory looks a category up by id, then by slug.
func (s *Service) GetCategory(ctx context.Context, idOrSlug string) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, idOrSlug)
	if err != nil {
		return nil, storeErr("find category", err)
	}
	if c == nil {
		if c, err = s.categories.FindBySlug(ctx, idOrSlug); err != nil {
			return nil, storeErr("find category", err)
		}
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// CreateCategory validates in and inserts a new category.
func (s *Service) CreateCategory(ctx context.Context, ac auth.Context, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkCategorySlug(ctx, in.Slug, ""); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Order:       in.Order,
	})
	if err != nil {
		return nil, storeErr("create category", err)
	}
	s.changed(ctx, "category", "create")
	return created, nil
}

// UpdateCategory replaces the writable fields of category id.
func (s *Service) UpdateCategory(ctx context.Context, ac auth.Context, id string, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	existing, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find category", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkCategorySlug(ctx, in.Slug, existing.ID); err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Slug = in.Slug
	existing.Description = in.Description
	existing.Order = in.Order

	updated, err := s.categories.Update(ctx, existing)
	if err != nil {
		return nil, storeErr("update category", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.changed(ctx, "category", "update")
	return updated, nil
}

// DeleteCategory removes category id. Categories that still own series
// are not deleted.
func (s *Service) DeleteCategory(ctx context.Context, ac auth.Context, id string) error {
	if err := requireAdmin(ac); err != nil {
		return err
	}
	existing, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return storeErr("find category", err)
	}
	if existing == nil {
		return ErrNotFound
	}

	n, err := s.series.Count(ctx, SeriesFilter{CategoryID: existing.ID})
	if err != nil {
		return storeErr("count series", err)
	}
	if n > 0 {
		return fmt.Errorf("category %q has %d series: %w", existing.Slug, n, ErrHasDependents)
	}

	ok, err := s.categories.Delete(ctx, existing.ID)
	if err != nil {
		return storeErr("delete category", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.changed(ctx, "category", "delete")
	return nil
}

// checkCategorySlug fails when slug belongs to a category other than selfID.
func (s *Service) checkCategorySlug(ctx context.Context, slug, selfID string) error {
	other, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return storeErr("find category", err)
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("category slug %q: %w", slug, ErrDuplicateSlug)
	}
	return nil
}
