package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Collection names shared with the mongostore package.
const (
	CategoriesCollection = "categories"
	SeriesCollection     = "series"
	ChaptersCollection   = "chapters"
)

// openMongo connects to MongoDB and selects the database named in the URI
// path, falling back to dbName.
func openMongo(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, &ConfigurationError{Key: "DATABASE_URI", Reason: err.Error()}
	}
	if cs.Database != "" {
		dbName = cs.Database
	}
	if dbName == "" {
		return nil, &ConfigurationError{Key: "DATABASE_NAME", Reason: "is not set"}
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(dbName), nil
}

// Ping checks that the backend behind h still answers.
func (h *Handle) Ping(ctx context.Context) error {
	if h.Mongo != nil {
		return h.Mongo.Client().Ping(ctx, readpref.Primary())
	}
	return h.SQL.PingContext(ctx)
}

// EnsureIndexes creates the unique slug indexes and the parent/order
// indexes used by list queries. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		CategoriesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		SeriesCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "order", Value: 1}}},
		},
		ChaptersCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "series", Value: 1}, {Key: "order", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	slog.Info("mongodb indexes ensured", "database", db.Name())
	return nil
}
