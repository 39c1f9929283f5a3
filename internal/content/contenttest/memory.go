// Package contenttest provides an in-memory implementation of the content
// repositories for tests. It enforces slug uniqueness the way the real
// stores do and counts writes so tests can assert that none happened.
package contenttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chapterpress/internal/content"
	"chapterpress/internal/models"
)

// Memory holds all three collections behind one mutex.
type Memory struct {
	mu         sync.Mutex
	seq        int
	clock      time.Time
	categories map[string]models.Category
	series     map[string]models.Series
	chapters   map[string]models.Chapter

	// Writes counts calls to mutating methods.
	Writes int
	// Err, when set, is returned by every call.
	Err error
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		categories: make(map[string]models.Category),
		series:     make(map[string]models.Series),
		chapters:   make(map[string]models.Chapter),
	}
}

// Repositories exposes m through the content repository interfaces.
func (m *Memory) Repositories() content.Repositories {
	return content.Repositories{
		Categories: categoryRepo{m},
		Series:     seriesRepo{m},
		Chapters:   chapterRepo{m},
	}
}

// tick returns a strictly increasing timestamp so insertion order is stable.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *Memory) nextID() string {
	m.seq++
	return fmt.Sprintf("id-%04d", m.seq)
}

type categoryRepo struct{ m *Memory }

func (r categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := make([]models.Category, 0, len(r.m.categories))
	for _, c := range r.m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r categoryRepo) FindByID(ctx context.Context, id string) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if c, ok := r.m.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r categoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, c := range r.m.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r categoryRepo) slugTaken(slug, selfID string) bool {
	for _, c := range r.m.categories {
		if c.Slug == slug && c.ID != selfID {
			return true
		}
	}
	return false
}

func (r categoryRepo) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if r.slugTaken(c.Slug, "") {
		return nil, content.ErrDuplicateSlug
	}
	created := *c
	created.ID = r.m.nextID()
	created.CreatedAt = r.m.tick()
	created.UpdatedAt = created.CreatedAt
	r.m.categories[created.ID] = created
	return &created, nil
}

func (r categoryRepo) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	old, ok := r.m.categories[c.ID]
	if !ok {
		return nil, nil
	}
	if r.slugTaken(c.Slug, c.ID) {
		return nil, content.ErrDuplicateSlug
	}
	updated := *c
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = r.m.tick()
	r.m.categories[c.ID] = updated
	return &updated, nil
}

func (r categoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return false, r.m.Err
	}
	_, ok := r.m.categories[id]
	delete(r.m.categories, id)
	return ok, nil
}

func (r categoryRepo) Count(ctx context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return 0, r.m.Err
	}
	return len(r.m.categories), nil
}

type seriesRepo struct{ m *Memory }

func (r seriesRepo) match(s models.Series, f content.SeriesFilter) bool {
	return f.CategoryID == "" || s.CategoryID == f.CategoryID
}

func (r seriesRepo) List(ctx context.Context, f content.SeriesFilter) ([]models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := []models.Series{}
	for _, s := range r.m.series {
		if r.match(s, f) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r seriesRepo) FindByID(ctx context.Context, id string) (*models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if s, ok := r.m.series[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r seriesRepo) FindBySlug(ctx context.Context, slug string) (*models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, s := range r.m.series {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, nil
}

func (r seriesRepo) slugTaken(slug, selfID string) bool {
	for _, s := range r.m.series {
		if s.Slug == slug && s.ID != selfID {
			return true
		}
	}
	return false
}

func (r seriesRepo) Create(ctx context.Context, s *models.Series) (*models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if r.slugTaken(s.Slug, "") {
		return nil, content.ErrDuplicateSlug
	}
	created := *s
	created.ID = r.m.nextID()
	created.CreatedAt = r.m.tick()
	created.UpdatedAt = created.CreatedAt
	r.m.series[created.ID] = created
	return &created, nil
}

func (r seriesRepo) Update(ctx context.Context, s *models.Series) (*models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	old, ok := r.m.series[s.ID]
	if !ok {
		return nil, nil
	}
	if r.slugTaken(s.Slug, s.ID) {
		return nil, content.ErrDuplicateSlug
	}
	updated := *s
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = r.m.tick()
	r.m.series[s.ID] = updated
	return &updated, nil
}

func (r seriesRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return false, r.m.Err
	}
	_, ok := r.m.series[id]
	delete(r.m.series, id)
	return ok, nil
}

func (r seriesRepo) Count(ctx context.Context, f content.SeriesFilter) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return 0, r.m.Err
	}
	n := 0
	for _, s := range r.m.series {
		if r.match(s, f) {
			n++
		}
	}
	return n, nil
}

type chapterRepo struct{ m *Memory }

func (r chapterRepo) match(c models.Chapter, f content.ChapterFilter) bool {
	if f.SeriesID != "" && c.SeriesID != f.SeriesID {
		return false
	}
	return !f.PublishedOnly || c.Published
}

func (r chapterRepo) List(ctx context.Context, f content.ChapterFilter) ([]models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := []models.Chapter{}
	for _, c := range r.m.chapters {
		if r.match(c, f) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r chapterRepo) FindByID(ctx context.Context, id string) (*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if c, ok := r.m.chapters[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r chapterRepo) FindBySlug(ctx context.Context, slug string) (*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, c := range r.m.chapters {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r chapterRepo) slugTaken(slug, selfID string) bool {
	for _, c := range r.m.chapters {
		if c.Slug == slug && c.ID != selfID {
			return true
		}
	}
	return false
}

func (r chapterRepo) Create(ctx context.Context, c *models.Chapter) (*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	if r.slugTaken(c.Slug, "") {
		return nil, content.ErrDuplicateSlug
	}
	created := *c
	created.ID = r.m.nextID()
	created.CreatedAt = r.m.tick()
	created.UpdatedAt = created.CreatedAt
	r.m.chapters[created.ID] = created
	return &created, nil
}

func (r chapterRepo) Update(ctx context.Context, c *models.Chapter) (*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	old, ok := r.m.chapters[c.ID]
	if !ok {
		return nil, nil
	}
	if r.slugTaken(c.Slug, c.ID) {
		return nil, content.ErrDuplicateSlug
	}
	updated := *c
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = r.m.tick()
	r.m.chapters[c.ID] = updated
	return &updated, nil
}

func (r chapterRepo) SetPublished(ctx context.Context, id string, published bool) (*models.Chapter, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	c, ok := r.m.chapters[id]
	if !ok {
		return nil, nil
	}
	c.Published = published
	c.UpdatedAt = r.m.tick()
	r.m.chapters[id] = c
	return &c, nil
}

func (r chapterRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.Writes++
	if r.m.Err != nil {
		return false, r.m.Err
	}
	_, ok := r.m.chapters[id]
	delete(r.m.chapters, id)
	return ok, nil
}

func (r chapterRepo) Count(ctx context.Context, f content.ChapterFilter) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return 0, r.m.Err
	}
	n := 0
	for _, c := range r.m.chapters {
		if r.match(c, f) {
			n++
		}
	}
	return n, nil
}
