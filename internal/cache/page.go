// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go caches rendered public pages in one Valkey hash, one field per
// request path. A content write anywhere can change several pages (a
// renamed category shows up on the home page, its own page and every
// chapter breadcrumb), so invalidation drops the whole hash in a single
// DEL rather than tracking which paths are affected.
//
// A nil *PageCache is valid and caches nothing.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"chapterpress/internal/metrics"
)

const (
	// pagesKey holds every cached page.
	pagesKey = "chapterpress:pages"

	// DefaultPageTTL bounds how long the hash lives after its first page
	// was stored. Writes clear it sooner.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache stores rendered HTML by request path.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache returns a cache on client, or nil when client is nil.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Enabled reports whether pages are actually cached.
func (pc *PageCache) Enabled() bool {
	return pc != nil
}

// Get returns the cached page for path.
func (pc *PageCache) Get(ctx context.Context, path string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	page, err := pc.client.HGet(ctx, pagesKey, path).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup("miss")
		return nil, false
	case err != nil:
		metrics.RecordCacheLookup("error")
		slog.Warn("page cache get failed", "path", path, "error", err)
		return nil, false
	}
	metrics.RecordCacheLookup("hit")
	return page, true
}

// Set stores page under path. The hash expiry is only set when it has none,
// so a steady stream of renders cannot keep stale pages alive forever.
func (pc *PageCache) Set(ctx context.Context, path string, page []byte) {
	if pc == nil {
		return
	}
	_, err := pc.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, pagesKey, path, page)
		p.ExpireNX(ctx, pagesKey, pc.ttl)
		return nil
	})
	if err != nil {
		slog.Warn("page cache set failed", "path", path, "error", err)
	}
}

// InvalidateAll drops every cached page. It matches the content service's
// change hook signature.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	n, err := pc.client.HLen(ctx, pagesKey).Result()
	if err != nil {
		slog.Warn("page cache size check failed", "error", err)
	}
	if err := pc.client.Del(ctx, pagesKey).Err(); err != nil {
		slog.Warn("page cache clear failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("page cache cleared", "pages", n)
	}
}
