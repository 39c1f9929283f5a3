package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chapterpress/internal/database"
	"chapterpress/internal/models"
)

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
	Order       int                `bson:"order"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *categoryDoc) model() models.Category {
	return models.Category{
		ID:          hexOrEmpty(d.ID),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Order:       d.Order,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CategoryRepo stores categories in the "categories" collection.
type CategoryRepo struct {
	coll *mongo.Collection
}

// NewCategoryRepo returns a CategoryRepo on db.
func NewCategoryRepo(db *mongo.Database) *CategoryRepo {
	return &CategoryRepo{coll: db.Collection(database.CategoriesCollection)}
}

// List returns all categories in display order.
func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	docs, err := findAll[categoryDoc](ctx, r.coll, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]models.Category, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}

// FindByID returns nil when id is unknown or not an ObjectID.
func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*models.Category, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": oid})
}

// FindBySlug returns nil when no category has slug.
func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.find(ctx, bson.M{"slug": slug})
}

func (r *CategoryRepo) find(ctx context.Context, filter bson.M) (*models.Category, error) {
	doc, err := findOne[categoryDoc](ctx, r.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	c := doc.model()
	return &c, nil
}

// Create inserts c with fresh timestamps.
func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	ts := now()
	doc := categoryDoc{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Order:       c.Order,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", translate(err))
	}
	if doc.ID, err = insertedID(res); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	out := doc.model()
	return &out, nil
}

// Update replaces the writable fields of c. Returns nil if it no longer exists.
func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	oid, ok := objectID(c.ID)
	if !ok {
		return nil, nil
	}
	doc, err := updateOne[categoryDoc](ctx, r.coll, oid, bson.M{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"order":       c.Order,
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	out := doc.model()
	return &out, nil
}

// Delete removes the category and reports whether it existed.
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := deleteOne(ctx, r.coll, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return ok, nil
}

// Count returns the number of categories.
func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	n, err := count(ctx, r.coll, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}
