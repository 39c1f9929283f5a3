// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mongostore implements the content repositories on MongoDB.
// Collections are categories, series and chapters. Parent references are
// ObjectIDs stored in "category" and "series"; timestamps are
// createdAt/updatedAt, so databases written by earlier deployments load as-is.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chapterpress/internal/content"
)

// Repositories returns MongoDB-backed content repositories.
func Repositories(db *mongo.Database) content.Repositories {
	return content.Repositories{
		Categories: NewCategoryRepo(db),
		Series:     NewSeriesRepo(db),
		Chapters:   NewChapterRepo(db),
	}
}

var (
	_ content.CategoryRepository = (*CategoryRepo)(nil)
	_ content.SeriesRepository   = (*SeriesRepo)(nil)
	_ content.ChapterRepository  = (*ChapterRepo)(nil)
)

// displayOrder is the sort used by every listing.
var displayOrder = bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}

// now returns the current time at the precision MongoDB stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// objectID parses hex. ok is false for anything that is not an ObjectID,
// which callers treat as "no such document".
func objectID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

// translate maps driver errors to content sentinels.
func translate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return content.ErrDuplicateSlug
	}
	return err
}

// findAll runs a sorted Find and decodes every document into out.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(displayOrder))
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// findOne decodes the first match, returning nil when there is none.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// updateOne applies set to the document with id and returns the result,
// or nil when no document matched.
func updateOne[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, set bson.M) (*T, error) {
	set["updatedAt"] = now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, hex string) (bool, error) {
	id, ok := objectID(hex)
	if !ok {
		return false, nil
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func count(ctx context.Context, coll *mongo.Collection, filter bson.M) (int, error) {
	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func insertedID(res *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}
