package content

import (
	"context"
	"fmt"

	"chapterpress/internal/auth"
	"chapterpress/internal/models"
)

// ListChapters returns chapters in display order, optionally restricted to
// one series. Non-admin callers only see published chapters.
func (s *Service) ListChapters(ctx context.Context, ac auth.Context, seriesID string) ([]models.Chapter, error) {
	items, err := s.chapters.List(ctx, ChapterFilter{SeriesID: seriesID, PublishedOnly: !ac.IsAdmin()})
	if err != nil {
		return nil, storeErr("list chapters", err)
	}
	sortChapters(items)
	return items, nil
}

// GetChapter looks a chapter up by id, then by slug, and resolves its series
// and category. Unpublished chapters are not found for non-admin callers.
func (s *Service) GetChapter(ctx context.Context, ac auth.Context, idOrSlug string) (*models.ChapterDetail, error) {
	ch, err := s.chapters.FindByID(ctx, idOrSlug)
	if err != nil {
		return nil, storeErr("find chapter", err)
	}
	if ch == nil {
		if ch, err = s.chapters.FindBySlug(ctx, idOrSlug); err != nil {
			return nil, storeErr("find chapter", err)
		}
	}
	if ch == nil || (!ch.Published && !ac.IsAdmin()) {
		return nil, ErrNotFound
	}

	detail := &models.ChapterDetail{Chapter: *ch}

	sr, err := s.series.FindByID(ctx, ch.SeriesID)
	if err != nil {
		return nil, storeErr("find series", err)
	}
	if sr == nil {
		return detail, nil
	}
	detail.Series = &models.SeriesRef{ID: sr.ID, Name: sr.Name, Slug: sr.Slug, CategoryID: sr.CategoryID}

	cat, err := s.categories.FindByID(ctx, sr.CategoryID)
	if err != nil {
		return nil, storeErr("find category", err)
	}
	if cat != nil {
		detail.Category = &models.CategoryRef{ID: cat.ID, Name: cat.Name, Slug: cat.Slug}
	}
	return detail, nil
}

// CreateChapter validates in and inserts a new chapter under an existing series.
func (s *Service) CreateChapter(ctx context.Context, ac auth.Context, in ChapterInput) (*models.Chapter, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkSeriesRef(ctx, in.SeriesID); err != nil {
		return nil, err
	}
	if err := s.checkChapterSlug(ctx, in.Slug, ""); err != nil {
		return nil, err
	}

	ch := &models.Chapter{}
	in.apply(ch)
	created, err := s.chapters.Create(ctx, ch)
	if err != nil {
		return nil, storeErr("create chapter", err)
	}
	s.changed(ctx, "chapter", "create")
	return created, nil
}

// UpdateChapter replaces the writable fields of chapter id.
func (s *Service) UpdateChapter(ctx context.Context, ac auth.Context, id string, in ChapterInput) (*models.Chapter, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	existing, err := s.chapters.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find chapter", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.checkSeriesRef(ctx, in.SeriesID); err != nil {
		return nil, err
	}
	if err := s.checkChapterSlug(ctx, in.Slug, existing.ID); err != nil {
		return nil, err
	}

	in.apply(existing)
	updated, err := s.chapters.Update(ctx, existing)
	if err != nil {
		return nil, storeErr("update chapter", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.changed(ctx, "chapter", "update")
	return updated, nil
}

// SetChapterPublished flips the visibility of chapter id.
func (s *Service) SetChapterPublished(ctx context.Context, ac auth.Context, id string, published bool) (*models.Chapter, error) {
	if err := requireAdmin(ac); err != nil {
		return nil, err
	}
	ch, err := s.chapters.SetPublished(ctx, id, published)
	if err != nil {
		return nil, storeErr("publish chapter", err)
	}
	if ch == nil {
		return nil, ErrNotFound
	}
	action := "unpublish"
	if published {
		action = "publish"
	}
	s.changed(ctx, "chapter", action)
	return ch, nil
}

// DeleteChapter removes chapter id.
func (s *Service) DeleteChapter(ctx context.Context, ac auth.Context, id string) error {
	if err := requireAdmin(ac); err != nil {
		return err
	}
	ok, err := s.chapters.Delete(ctx, id)
	if err != nil {
		return storeErr("delete chapter", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.changed(ctx, "chapter", "delete")
	return nil
}

func (in *ChapterInput) apply(ch *models.Chapter) {
	ch.Title = in.Title
	ch.Slug = in.Slug
	ch.Content = in.Content
	ch.Format = in.Format
	ch.VideoURL = in.VideoURL
	ch.SeriesID = in.SeriesID
	ch.Order = in.Order
	ch.Published = in.Published
}

func (s *Service) checkSeriesRef(ctx context.Context, id string) error {
	sr, err := s.series.FindByID(ctx, id)
	if err != nil {
		return storeErr("find series", err)
	}
	if sr == nil {
		return fieldError("seriesId", "seriesId does not reference an existing series")
	}
	return nil
}

func (s *Service) checkChapterSlug(ctx context.Context, slug, selfID string) error {
	other, err := s.chapters.FindBySlug(ctx, slug)
	if err != nil {
		return storeErr("find chapter", err)
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("chapter slug %q: %w", slug, ErrDuplicateSlug)
	}
	return nil
}
