package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"chapterpress/internal/content"
	"chapterpress/internal/models"
)

var ts = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func categoryBSON(id primitive.ObjectID, name, slug string, order int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "slug", Value: slug},
		{Key: "order", Value: order},
		{Key: "createdAt", Value: ts},
		{Key: "updatedAt", Value: ts},
		{Key: "__v", Value: 0},
	}
}

func TestCategoryRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list decodes documents", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns(mt, "categories"), mtest.FirstBatch,
				categoryBSON(a, "IP Basics", "ip-basics", 0),
				categoryBSON(b, "Routing", "routing", 1)),
			mtest.CreateCursorResponse(0, ns(mt, "categories"), mtest.NextBatch),
		)

		items, err := NewCategoryRepo(mt.DB).List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, a.Hex(), items[0].ID)
		assert.Equal(mt, "routing", items[1].Slug)
		assert.Equal(mt, ts, items[0].CreatedAt)
	})

	mt.Run("find by slug", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "categories"), mtest.FirstBatch,
			categoryBSON(id, "IP Basics", "ip-basics", 0)))

		c, err := NewCategoryRepo(mt.DB).FindBySlug(context.Background(), "ip-basics")
		require.NoError(mt, err)
		require.NotNil(mt, c)
		assert.Equal(mt, id.Hex(), c.ID)
	})

	mt.Run("find missing returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "categories"), mtest.FirstBatch))

		c, err := NewCategoryRepo(mt.DB).FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
		assert.Nil(mt, c)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		c, err := NewCategoryRepo(mt.DB).FindByID(context.Background(), "ip-basics")
		assert.NoError(mt, err)
		assert.Nil(mt, c)

		ok, err := NewCategoryRepo(mt.DB).Delete(context.Background(), "zzz")
		assert.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("create assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c, err := NewCategoryRepo(mt.DB).Create(context.Background(),
			&models.Category{Name: "IP Basics", Slug: "ip-basics"})
		require.NoError(mt, err)
		assert.Len(mt, c.ID, 24)
		assert.False(mt, c.CreatedAt.IsZero())
		assert.Equal(mt, c.CreatedAt, c.UpdatedAt)
	})

	mt.Run("duplicate key becomes duplicate slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.categories index: slug_1",
		}))

		_, err := NewCategoryRepo(mt.DB).Create(context.Background(),
			&models.Category{Name: "Dup", Slug: "ip-basics"})
		assert.ErrorIs(mt, err, content.ErrDuplicateSlug)
	})

	mt.Run("update returns new document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: categoryBSON(id, "Renamed", "renamed", 4)},
		})

		c, err := NewCategoryRepo(mt.DB).Update(context.Background(),
			&models.Category{ID: id.Hex(), Name: "Renamed", Slug: "renamed", Order: 4})
		require.NoError(mt, err)
		require.NotNil(mt, c)
		assert.Equal(mt, "Renamed", c.Name)
	})

	mt.Run("update missing returns nil", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		c, err := NewCategoryRepo(mt.DB).Update(context.Background(),
			&models.Category{ID: primitive.NewObjectID().Hex(), Name: "x", Slug: "x"})
		assert.NoError(mt, err)
		assert.Nil(mt, c)
	})

	mt.Run("delete reports existence", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := NewCategoryRepo(mt.DB)
		id := primitive.NewObjectID().Hex()

		ok, err := repo.Delete(context.Background(), id)
		require.NoError(mt, err)
		assert.True(mt, ok)

		ok, err = repo.Delete(context.Background(), id)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "categories"), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		n, err := NewCategoryRepo(mt.DB).Count(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})
}

func TestSeriesRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list by category maps reference", func(mt *mtest.T) {
		cat, id := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "series"), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Overview"},
			{Key: "slug", Value: "overview"},
			{Key: "category", Value: cat},
			{Key: "order", Value: 0},
			{Key: "createdAt", Value: ts},
			{Key: "updatedAt", Value: ts},
		}))

		items, err := NewSeriesRepo(mt.DB).List(context.Background(), content.SeriesFilter{CategoryID: cat.Hex()})
		require.NoError(mt, err)
		require.Len(mt, items, 1)
		assert.Equal(mt, cat.Hex(), items[0].CategoryID)
	})

	mt.Run("malformed category filter matches nothing", func(mt *mtest.T) {
		items, err := NewSeriesRepo(mt.DB).List(context.Background(), content.SeriesFilter{CategoryID: "nope"})
		require.NoError(mt, err)
		assert.Empty(mt, items)

		n, err := NewSeriesRepo(mt.DB).Count(context.Background(), content.SeriesFilter{CategoryID: "nope"})
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("create rejects malformed category", func(mt *mtest.T) {
		_, err := NewSeriesRepo(mt.DB).Create(context.Background(), &models.Series{Name: "S", Slug: "s", CategoryID: "x"})
		assert.Error(mt, err)
	})
}

func TestChapterRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("legacy documents default to html", func(mt *mtest.T) {
		id, series := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "chapters"), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "What is IP"},
			{Key: "slug", Value: "what-is-ip"},
			{Key: "series", Value: series},
			{Key: "content", Value: "<p>...</p>"},
			{Key: "videoUrl", Value: "https://v.example/1"},
			{Key: "order", Value: 0},
			{Key: "published", Value: true},
			{Key: "createdAt", Value: ts},
			{Key: "updatedAt", Value: ts},
		}))

		c, err := NewChapterRepo(mt.DB).FindBySlug(context.Background(), "what-is-ip")
		require.NoError(mt, err)
		require.NotNil(mt, c)
		assert.Equal(mt, models.FormatHTML, c.Format)
		assert.Equal(mt, series.Hex(), c.SeriesID)
		assert.True(mt, c.Published)
		assert.Equal(mt, "https://v.example/1", c.VideoURL)
	})

	mt.Run("set published", func(mt *mtest.T) {
		id, series := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "_id", Value: id},
				{Key: "title", Value: "Draft"},
				{Key: "slug", Value: "draft"},
				{Key: "series", Value: series},
				{Key: "content", Value: "x"},
				{Key: "format", Value: "markdown"},
				{Key: "published", Value: true},
			}},
		})

		c, err := NewChapterRepo(mt.DB).SetPublished(context.Background(), id.Hex(), true)
		require.NoError(mt, err)
		require.NotNil(mt, c)
		assert.True(mt, c.Published)
		assert.True(mt, c.IsMarkdown())
	})

	mt.Run("count published in series", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, "chapters"), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(2)}}))

		n, err := NewChapterRepo(mt.DB).Count(context.Background(),
			content.ChapterFilter{SeriesID: primitive.NewObjectID().Hex(), PublishedOnly: true})
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})
}

func TestChapterFilter(t *testing.T) {
	series := primitive.NewObjectID()
	f, ok := chapterFilter(content.ChapterFilter{SeriesID: series.Hex(), PublishedOnly: true})
	require.True(t, ok)
	assert.Equal(t, bson.M{"series": series, "published": true}, f)

	_, ok = chapterFilter(content.ChapterFilter{SeriesID: "bad"})
	assert.False(t, ok)

	f, ok = chapterFilter(content.ChapterFilter{})
	require.True(t, ok)
	assert.Empty(t, f)
}
