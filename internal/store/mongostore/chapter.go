// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chapterpress/internal/content"
	"chapterpress/internal/database"
	"chapterpress/internal/models"
)

type chapterDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Title     string               `bson:"title"`
	Slug      string               `bson:"slug"`
	Content   string               `bson:"content"`
	Format    models.ContentFormat `bson:"format,omitempty"`
	VideoURL  string               `bson:"videoUrl,omitempty"`
	Series    primitive.ObjectID   `bson:"series"`
	Order     int                  `bson:"order"`
	Published bool                 `bson:"published"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d *chapterDoc) model() models.Chapter {
	format := d.Format
	if format == "" {
		// Documents written before formats existed are HTML.
		format = models.FormatHTML
	}
	return models.Chapter{
		ID:        hexOrEmpty(d.ID),
		Title:     d.Title,
		Slug:      d.Slug,
		Content:   d.Content,
		Format:    format,
		VideoURL:  d.VideoURL,
		SeriesID:  hexOrEmpty(d.Series),
		Order:     d.Order,
		Published: d.Published,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ChapterRepo stores chapters in the "chapters" collection.
type ChapterRepo struct {
	coll *mongo.Collection
}

// NewChapterRepo returns a ChapterRepo on db.
func NewChapterRepo(db *mongo.Database) *ChapterRepo {
	return &ChapterRepo{coll: db.Collection(database.ChaptersCollection)}
}

func chapterFilter(f content.ChapterFilter) (bson.M, bool) {
	filter := bson.M{}
	if f.SeriesID != "" {
		oid, ok := objectID(f.SeriesID)
		if !ok {
			return nil, false
		}
		filter["series"] = oid
	}
	if f.PublishedOnly {
		filter["published"] = true
	}
	return filter, true
}

// List returns chapters matching f in display order.
func (r *ChapterRepo) List(ctx context.Context, f content.ChapterFilter) ([]models.Chapter, error) {
	filter, ok := chapterFilter(f)
	if !ok {
		return []models.Chapter{}, nil
	}
	docs, err := findAll[chapterDoc](ctx, r.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	out := make([]models.Chapter, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}

// FindByID returns nil when id is unknown or not an ObjectID.
func (r *ChapterRepo) FindByID(ctx context.Context, id string) (*models.Chapter, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": oid})
}

// FindBySlug returns nil when no chapter has slug.
func (r *ChapterRepo) FindBySlug(ctx context.Context, slug string) (*models.Chapter, error) {
	return r.find(ctx, bson.M{"slug": slug})
}

func (r *ChapterRepo) find(ctx context.Context, filter bson.M) (*models.Chapter, error) {
	doc, err := findOne[chapterDoc](ctx, r.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("find chapter: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	c := doc.model()
	return &c, nil
}

// Create inserts c with fresh timestamps.
func (r *ChapterRepo) Create(ctx context.Context, c *models.Chapter) (*models.Chapter, error) {
	series, ok := objectID(c.SeriesID)
	if !ok {
		return nil, fmt.Errorf("create chapter: malformed series id %q", c.SeriesID)
	}
	ts := now()
	doc := chapterDoc{
		Title:     c.Title,
		Slug:      c.Slug,
		Content:   c.Content,
		Format:    c.Format,
		VideoURL:  c.VideoURL,
		Series:    series,
		Order:     c.Order,
		Published: c.Published,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create chapter: %w", translate(err))
	}
	if doc.ID, err = insertedID(res); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	out := doc.model()
	return &out, nil
}

// Update replaces the writable fields of c. Returns nil if it no longer exists.
func (r *ChapterRepo) Update(ctx context.Context, c *models.Chapter) (*models.Chapter, error) {
	oid, ok := objectID(c.ID)
	if !ok {
		return nil, nil
	}
	series, ok := objectID(c.SeriesID)
	if !ok {
		return nil, fmt.Errorf("update chapter: malformed series id %q", c.SeriesID)
	}
	doc, err := updateOne[chapterDoc](ctx, r.coll, oid, bson.M{
		"title":     c.Title,
		"slug":      c.Slug,
		"content":   c.Content,
		"format":    c.Format,
		"videoUrl":  c.VideoURL,
		"series":    series,
		"order":     c.Order,
		"published": c.Published,
	})
	if err != nil {
		return nil, fmt.Errorf("update chapter: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	out := doc.model()
	return &out, nil
}

// SetPublished changes only the published flag. Returns nil if not found.
func (r *ChapterRepo) SetPublished(ctx context.Context, id string, published bool) (*models.Chapter, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := updateOne[chapterDoc](ctx, r.coll, oid, bson.M{"published": published})
	if err != nil {
		return nil, fmt.Errorf("set chapter published: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	out := doc.model()
	return &out, nil
}

// Delete removes the chapter and reports whether it existed.
func (r *ChapterRepo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := deleteOne(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("delete chapter: %w", err)
	}
	return ok, nil
}

// Count returns the number of chapters matching f.
func (r *ChapterRepo) Count(ctx context.Context, f content.ChapterFilter) (int, error) {
	filter, ok := chapterFilter(f)
	if !ok {
		return 0, nil
	}
	n, err := count(ctx, r.coll, filter)
	if err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return n, nil
}
