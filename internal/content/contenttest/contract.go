package contenttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chapterpress/internal/content"
	"chapterpress/internal/models"
)

// RunRepositoryContract exercises repos against the behaviour every backend
// must share. repos must start empty.
func RunRepositoryContract(t *testing.T, repos content.Repositories) {
	t.Helper()
	ctx := context.Background()
	const missing = "does-not-exist"

	var cat, other *models.Category
	t.Run("categories", func(t *testing.T) {
		var err error
		cat, err = repos.Categories.Create(ctx, &models.Category{Name: "IP Basics", Slug: "ip-basics"})
		require.NoError(t, err)
		require.NotEmpty(t, cat.ID)
		assert.False(t, cat.CreatedAt.IsZero())

		other, err = repos.Categories.Create(ctx, &models.Category{Name: "Routing", Slug: "routing", Order: 1})
		require.NoError(t, err)

		_, err = repos.Categories.Create(ctx, &models.Category{Name: "Copy", Slug: "ip-basics"})
		assert.ErrorIs(t, err, content.ErrDuplicateSlug)

		got, err := repos.Categories.FindByID(ctx, cat.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "IP Basics", got.Name)

		got, err = repos.Categories.FindBySlug(ctx, "routing")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, other.ID, got.ID)

		got, err = repos.Categories.FindByID(ctx, missing)
		assert.NoError(t, err)
		assert.Nil(t, got)

		upd := *cat
		upd.Name = "IP Fundamentals"
		upd.Description = "Addresses"
		got, err = repos.Categories.Update(ctx, &upd)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "IP Fundamentals", got.Name)

		clash := *other
		clash.Slug = "ip-basics"
		_, err = repos.Categories.Update(ctx, &clash)
		assert.ErrorIs(t, err, content.ErrDuplicateSlug)

		ghost := models.Category{ID: missing, Name: "Ghost", Slug: "ghost"}
		got, err = repos.Categories.Update(ctx, &ghost)
		assert.NoError(t, err)
		assert.Nil(t, got)

		items, err := repos.Categories.List(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		n, err := repos.Categories.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
	require.NotNil(t, cat)

	var sr *models.Series
	t.Run("series", func(t *testing.T) {
		var err error
		sr, err = repos.Series.Create(ctx, &models.Series{Name: "Overview", Slug: "overview", CategoryID: cat.ID})
		require.NoError(t, err)
		assert.Equal(t, cat.ID, sr.CategoryID)

		_, err = repos.Series.Create(ctx, &models.Series{Name: "Overview 2", Slug: "overview", CategoryID: other.ID})
		assert.ErrorIs(t, err, content.ErrDuplicateSlug)

		items, err := repos.Series.List(ctx, content.SeriesFilter{CategoryID: cat.ID})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "overview", items[0].Slug)

		n, err := repos.Series.Count(ctx, content.SeriesFilter{CategoryID: other.ID})
		require.NoError(t, err)
		assert.Zero(t, n)

		got, err := repos.Series.FindBySlug(ctx, "overview")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sr.ID, got.ID)
	})
	require.NotNil(t, sr)

	t.Run("chapters", func(t *testing.T) {
		pub, err := repos.Chapters.Create(ctx, &models.Chapter{
			Title: "What is IP", Slug: "what-is-ip", Content: "<p>...</p>", Format: models.FormatHTML,
			SeriesID: sr.ID, Published: true,
		})
		require.NoError(t, err)
		draft, err := repos.Chapters.Create(ctx, &models.Chapter{
			Title: "Subnets", Slug: "subnets", Content: "## Masks", Format: models.FormatMarkdown,
			VideoURL: "https://example.com/v", SeriesID: sr.ID, Order: 1,
		})
		require.NoError(t, err)

		_, err = repos.Chapters.Create(ctx, &models.Chapter{Title: "Dup", Slug: "subnets", Content: "x", Format: models.FormatHTML, SeriesID: sr.ID})
		assert.ErrorIs(t, err, content.ErrDuplicateSlug)

		got, err := repos.Chapters.FindBySlug(ctx, "subnets")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.FormatMarkdown, got.Format)
		assert.Equal(t, "https://example.com/v", got.VideoURL)
		assert.False(t, got.Published)

		all, err := repos.Chapters.List(ctx, content.ChapterFilter{SeriesID: sr.ID})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		published, err := repos.Chapters.List(ctx, content.ChapterFilter{SeriesID: sr.ID, PublishedOnly: true})
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, pub.ID, published[0].ID)

		toggled, err := repos.Chapters.SetPublished(ctx, draft.ID, true)
		require.NoError(t, err)
		require.NotNil(t, toggled)
		assert.True(t, toggled.Published)
		assert.Equal(t, "## Masks", toggled.Content)

		toggled, err = repos.Chapters.SetPublished(ctx, missing, true)
		assert.NoError(t, err)
		assert.Nil(t, toggled)

		n, err := repos.Chapters.Count(ctx, content.ChapterFilter{PublishedOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ok, err := repos.Chapters.Delete(ctx, draft.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = repos.Chapters.Delete(ctx, draft.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := repos.Categories.Delete(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repos.Categories.Delete(ctx, missing)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repos.Categories.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
