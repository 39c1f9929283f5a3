// Package content implements the Category → Series → Chapter operations.
// Every mutation takes the caller's auth.Context explicitly and is refused
// before any store access unless the caller holds an admin session.
package content

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"chapterpress/internal/auth"
	"chapterpress/internal/metrics"
	"chapterpress/internal/models"
	"chapterpress/internal/validation"
)

// Service coordinates the three repositories.
type Service struct {
	categories CategoryRepository
	series     SeriesRepository
	chapters   ChapterRepository
	onChange   []func(ctx context.Context)
}

// Option configures a Service.
type Option func(*Service)

// WithChangeHook registers fn to run after every successful mutation.
func WithChangeHook(fn func(ctx context.Context)) Option {
	return func(s *Service) { s.onChange = append(s.onChange, fn) }
}

// NewService returns a Service over repos.
func NewService(repos Repositories, opts ...Option) *Service {
	s := &Service{
		categories: repos.Categories,
		series:     repos.Series,
		chapters:   repos.Chapters,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func requireAdmin(ac auth.Context) error {
	if !ac.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// changed records a successful mutation and fires the change hooks.
func (s *Service) changed(ctx context.Context, entity, action string) {
	metrics.RecordWrite(entity, action)
	for _, fn := range s.onChange {
		fn(ctx)
	}
}

// storeErr wraps a backend failure. Slug index violations are client
// errors and pass through quietly; anything else is logged and counted.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrDuplicateSlug) {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordStoreError(op)
	slog.Error("content store failure", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func validate(in any) error {
	if errs := validation.ValidateStruct(in); errs != nil {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// byOrder sorts by order ascending, then creation time ascending.
func byOrder[T any](items []T, key func(*T) (int, int64)) {
	slices.SortStableFunc(items, func(a, b T) int {
		ao, at := key(&a)
		bo, bt := key(&b)
		if c := cmp.Compare(ao, bo); c != 0 {
			return c
		}
		return cmp.Compare(at, bt)
	})
}

func sortCategories(items []models.Category) {
	byOrder(items, func(c *models.Category) (int, int64) { return c.Order, c.CreatedAt.UnixNano() })
}

func sortSeries(items []models.Series) {
	byOrder(items, func(s *models.Series) (int, int64) { return s.Order, s.CreatedAt.UnixNano() })
}

func sortChapters(items []models.Chapter) {
	byOrder(items, func(c *models.Chapter) (int, int64) { return c.Order, c.CreatedAt.UnixNano() })
}

// Stats returns entity counts for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	var err error
	if st.Categories, err = s.categories.Count(ctx); err != nil {
		return nil, storeErr("count categories", err)
	}
	if st.Series, err = s.series.Count(ctx, SeriesFilter{}); err != nil {
		return nil, storeErr("count series", err)
	}
	if st.Chapters, err = s.chapters.Count(ctx, ChapterFilter{}); err != nil {
		return nil, storeErr("count chapters", err)
	}
	if st.Published, err = s.chapters.Count(ctx, ChapterFilter{PublishedOnly: true}); err != nil {
		return nil, storeErr("count published chapters", err)
	}
	return &st, nil
}

// Tree returns the whole hierarchy in display order. Unpublished chapters
// are included only for admins.
func (s *Service) Tree(ctx context.Context, ac auth.Context) ([]models.CategoryNode, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	series, err := s.ListSeries(ctx, "")
	if err != nil {
		return nil, err
	}
	chapters, err := s.ListChapters(ctx, ac, "")
	if err != nil {
		return nil, err
	}

	bySeries := make(map[string][]models.Chapter)
	for _, ch := range chapters {
		bySeries[ch.SeriesID] = append(bySeries[ch.SeriesID], ch)
	}
	byCategory := make(map[string][]models.SeriesNode)
	for _, sr := range series {
		byCategory[sr.CategoryID] = append(byCategory[sr.CategoryID], models.SeriesNode{
			Series:   sr,
			Chapters: bySeries[sr.ID],
		})
	}

	tree := make([]models.CategoryNode, 0, len(cats))
	for _, c := range cats {
		tree = append(tree, models.CategoryNode{Category: c, Series: byCategory[c.ID]})
	}
	return tree, nil
}
