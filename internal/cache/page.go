// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache of page lookups by full path.
// Entries are dropped whenever a save, rename or reparent touches the
// path or anything below it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pagebuilder/internal/models"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a page lookup stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// globEscaper escapes the characters SCAN MATCH treats as wildcards.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// PageCache manages cached page lookups in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// PathKey returns the cache key for a page path.
func PathKey(path string) string {
	return pageKeyPrefix + path
}

// Get returns the cached page for path.
func (pc *PageCache) Get(ctx context.Context, path string) (*models.Page, bool) {
	val, err := pc.client.Get(ctx, PathKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "path", path, "error", err)
		return nil, false
	}

	var p models.Page
	if err := json.Unmarshal(val, &p); err != nil {
		slog.Warn("page cache decode error", "path", path, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "path", path)
	return &p, true
}

// Set stores p under its full path with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, p *models.Page) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Warn("page cache encode error", "path", p.FullPath(), "error", err)
		return
	}
	if err := pc.client.Set(ctx, PathKey(p.FullPath()), data, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "path", p.FullPath(), "error", err)
	}
}

// InvalidatePage removes a single path from the cache.
func (pc *PageCache) InvalidatePage(ctx context.Context, path string) {
	if err := pc.client.Del(ctx, PathKey(path)).Err(); err != nil {
		slog.Warn("page cache invalidate error", "path", path, "error", err)
		return
	}
	slog.Debug("page cache invalidated", "path", path)
}

// InvalidatePrefix removes every cached path starting with prefix.
func (pc *PageCache) InvalidatePrefix(ctx context.Context, prefix string) {
	pc.deleteMatching(ctx, PathKey(globEscaper.Replace(prefix))+"*")
}

// InvalidateAll removes all cached pages.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	pc.deleteMatching(ctx, pageKeyPrefix+"*")
}

// deleteMatching scans for keys matching pattern and deletes them in batches.
func (pc *PageCache) deleteMatching(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache entries cleared", "pattern", pattern, "deleted", deleted)
	}
}
