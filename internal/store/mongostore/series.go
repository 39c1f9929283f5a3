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

type seriesDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Category    primitive.ObjectID `bson:"category"`
	Order       int                `bson:"order"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *seriesDoc) model() models.Series {
	return models.Series{
		ID:          hexOrEmpty(d.ID),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		CategoryID:  hexOrEmpty(d.Category),
		Order:       d.Order,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// SeriesRepo stores series in the "series" collection.
type SeriesRepo struct {
	coll *mongo.Collection
}

// NewSeriesRepo returns a SeriesRepo on db.
func NewSeriesRepo(db *mongo.Database) *SeriesRepo {
	return &SeriesRepo{coll: db.Collection(database.SeriesCollection)}
}

// seriesFilter converts f; ok is false when f cannot match anything.
func seriesFilter(f content.SeriesFilter) (bson.M, bool) {
	filter := bson.M{}
	if f.CategoryID != "" {
		oid, ok := objectID(f.CategoryID)
		if !ok {
			return nil, false
		}
		filter["category"] = oid
	}
	return filter, true
}

// List returns series matching f in display order.
func (r *SeriesRepo) List(ctx context.Context, f content.SeriesFilter) ([]models.Series, error) {
	filter, ok := seriesFilter(f)
	if !ok {
		return []models.Series{}, nil
	}
	docs, err := findAll[seriesDoc](ctx, r.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	out := make([]models.Series, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}

// FindByID returns nil when id is unknown or not an ObjectID.
func (r *SeriesRepo) FindByID(ctx context.Context, id string) (*models.Series, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": oid})
}

// FindBySlug returns nil when no series has slug.
func (r *SeriesRepo) FindBySlug(ctx context.Context, slug string) (*models.Series, error) {
	return r.find(ctx, bson.M{"slug": slug})
}

func (r *SeriesRepo) find(ctx context.Context, filter bson.M) (*models.Series, error) {
	doc, err := findOne[seriesDoc](ctx, r.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("find series: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	s := doc.model()
	return &s, nil
}

// Create inserts s with fresh timestamps.
func (r *SeriesRepo) Create(ctx context.Context, s *models.Series) (*models.Series, error) {
	cat, ok := objectID(s.CategoryID)
	if !ok {
		return nil, fmt.Errorf("create series: malformed category id %q", s.CategoryID)
	}
	ts := now()
	doc := seriesDoc{
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		Category:    cat,
		Order:       s.Order,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create series: %w", translate(err))
	}
	if doc.ID, err = insertedID(res); err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	out := doc.model()
	return &out, nil
}

// Update replaces the writable fields of s. Returns nil if it no longer exists.
func (r *SeriesRepo) Update(ctx context.Context, s *models.Series) (*models.Series, error) {
	oid, ok := objectID(s.ID)
	if !ok {
		return nil, nil
	}
	cat, ok := objectID(s.CategoryID)
	if !ok {
		return nil, fmt.Errorf("update series: malformed category id %q", s.CategoryID)
	}
	doc, err := updateOne[seriesDoc](ctx, r.coll, oid, bson.M{
		"name":        s.Name,
		"slug":        s.Slug,
		"description": s.Description,
		"category":    cat,
		"order":       s.Order,
	})
	if err != nil {
		return nil, fmt.Errorf("update series: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	out := doc.model()
	return &out, nil
}

// Delete removes the series and reports whether it existed.
func (r *SeriesRepo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := deleteOne(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("delete series: %w", err)
	}
	return ok, nil
}

// Count returns the number of series matching f.
func (r *SeriesRepo) Count(ctx context.Context, f content.SeriesFilter) (int, error) {
	filter, ok := seriesFilter(f)
	if !ok {
		return 0, nil
	}
	n, err := count(ctx, r.coll, filter)
	if err != nil {
		return 0, fmt.Errorf("count series: %w", err)
	}
	return n, nil
}
