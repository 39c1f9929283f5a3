// Package database owns the connection to the content store. A Client is
// constructed once by the composition root; Connect lazily dials either
// MongoDB or PostgreSQL depending on the URI scheme and hands every caller
// the same Handle.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"
)

//go:embed migrations
var embedMigrations embed.FS

// Kind identifies the backend behind a Handle.
type Kind string

const (
	KindMongo    Kind = "mongodb"
	KindPostgres Kind = "postgres"
)

// ErrConfiguration is matched by every *ConfigurationError.
var ErrConfiguration = errors.New("database configuration")

// ConfigurationError reports a missing or unusable connection setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("database configuration: %s %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// Handle is an open connection to exactly one backend.
type Handle struct {
	Kind  Kind
	SQL   *sql.DB
	Mongo *mongo.Database
}

// KindOf maps a connection URI to its backend.
func KindOf(uri string) (Kind, error) {
	if strings.TrimSpace(uri) == "" {
		return "", &ConfigurationError{Key: "DATABASE_URI", Reason: "is not set"}
	}
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return "", &ConfigurationError{Key: "DATABASE_URI", Reason: "has no scheme"}
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return KindMongo, nil
	case "postgres", "postgresql":
		return KindPostgres, nil
	}
	return "", &ConfigurationError{Key: "DATABASE_URI", Reason: fmt.Sprintf("has unsupported scheme %q", scheme)}
}

type openFunc func(ctx context.Context, kind Kind, uri, dbName string) (*Handle, error)

// connectTimeout bounds one shared dial attempt.
const connectTimeout = 30 * time.Second

// Client lazily opens and caches a single Handle.
type Client struct {
	uri    string
	dbName string
	open   openFunc

	group  singleflight.Group
	mu     sync.Mutex
	handle *Handle
}

// NewClient returns a Client for the given URI. Nothing is dialed until Connect.
func NewClient(uri, dbName string) *Client {
	return &Client{uri: uri, dbName: dbName, open: openHandle}
}

// Connect returns the cached Handle, dialing the store on first use.
// Concurrent callers during the first dial share one attempt. A failed
// attempt is not cached, so the next call dials again.
//
// The shared dial is detached from the caller's cancellation and bounded
// by connectTimeout instead; a caller whose ctx ends stops waiting without
// failing the attempt for the others.
func (c *Client) Connect(ctx context.Context) (*Handle, error) {
	if h := c.cached(); h != nil {
		return h, nil
	}

	kind, err := KindOf(c.uri)
	if err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan("connect", func() (any, error) {
		if h := c.cached(); h != nil {
			return h, nil
		}
		dialCtx, cancel := context.WithTimeout(detached, connectTimeout)
		defer cancel()
		h, err := c.open(dialCtx, kind, c.uri, c.dbName)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.handle = h
		c.mu.Unlock()
		slog.Info("database connected", "kind", kind)
		return h, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("connect: %w", ctx.Err())
	}
}

func (c *Client) cached() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// Close releases the cached Handle, if any.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mu.Unlock()

	if h == nil {
		return nil
	}
	switch {
	case h.SQL != nil:
		return h.SQL.Close()
	case h.Mongo != nil:
		return h.Mongo.Client().Disconnect(ctx)
	}
	return nil
}

func openHandle(ctx context.Context, kind Kind, uri, dbName string) (*Handle, error) {
	switch kind {
	case KindPostgres:
		db, err := openPostgres(ctx, uri)
		if err != nil {
			return nil, err
		}
		return &Handle{Kind: kind, SQL: db}, nil
	case KindMongo:
		db, err := openMongo(ctx, uri, dbName)
		if err != nil {
			return nil, err
		}
		return &Handle{Kind: kind, Mongo: db}, nil
	}
	return nil, &ConfigurationError{Key: "DATABASE_URI", Reason: fmt.Sprintf("has unsupported backend %q", kind)}
}

// openPostgres opens a PostgreSQL connection pool and verifies it with a ping.
func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files.
// Migrations are embedded at compile time so no external files are needed
// at runtime.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}

// Prepare brings the schema of either backend up to date: goose migrations
// for PostgreSQL, indexes for MongoDB.
func Prepare(ctx context.Context, h *Handle) error {
	switch h.Kind {
	case KindPostgres:
		return Migrate(h.SQL)
	case KindMongo:
		return EnsureIndexes(ctx, h.Mongo)
	}
	return fmt.Errorf("prepare: unknown backend %q", h.Kind)
}
