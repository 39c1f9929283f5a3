package content

import (
	"context"

	"chapterpress/internal/models"
)

// Lookups return (nil, nil) when nothing matches, including for ids that are
// not well-formed for the backend. Create and Update return
// ErrDuplicateSlug (possibly wrapped) when the slug index rejects the
// write. Update, Delete and SetPublished report a missing row as nil/false.

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// SeriesFilter narrows series listings. Zero value means all series.
type SeriesFilter struct {
	CategoryID string
}

// SeriesRepository persists series.
type SeriesRepository interface {
	List(ctx context.Context, f SeriesFilter) ([]models.Series, error)
	FindByID(ctx context.Context, id string) (*models.Series, error)
	FindBySlug(ctx context.Context, slug string) (*models.Series, error)
	Create(ctx context.Context, s *models.Series) (*models.Series, error)
	Update(ctx context.Context, s *models.Series) (*models.Series, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, f SeriesFilter) (int, error)
}

// ChapterFilter narrows chapter listings. Zero value means all chapters.
type ChapterFilter struct {
	SeriesID      string
	PublishedOnly bool
}

// ChapterRepository persists chapters.
type ChapterRepository interface {
	List(ctx context.Context, f ChapterFilter) ([]models.Chapter, error)
	FindByID(ctx context.Context, id string) (*models.Chapter, error)
	FindBySlug(ctx context.Context, slug string) (*models.Chapter, error)
	Create(ctx context.Context, c *models.Chapter) (*models.Chapter, error)
	Update(ctx context.Context, c *models.Chapter) (*models.Chapter, error)
	SetPublished(ctx context.Context, id string, published bool) (*models.Chapter, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, f ChapterFilter) (int, error)
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Categories CategoryRepository
	Series     SeriesRepository
	Chapters   ChapterRepository
}
