package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lvonguyen/secfindings/internal/finding"
)

// cacheTTL is how long a parsed result stays valid. Tool output files are
// only ever appended by a fresh scanner run, so a short TTL is enough to
// absorb repeated scans of an unchanged results tree within one pipeline
// session without risking stale data across runs.
const cacheTTL = 10 * time.Minute

// ParseCache memoizes Adapter.Parse results keyed by (tool, path, size,
// modTime), backed by redis when configured and falling back to an
// in-memory map with the same TTL semantics otherwise, so the aggregator
// runs standalone without a redis dependency at runtime.
type ParseCache struct {
	logger *zap.Logger
	rdb    *redis.Client

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	findings []finding.Finding
	expires  time.Time
}

// NewParseCache returns a cache. rdb may be nil, in which case the cache
// operates purely in-memory.
func NewParseCache(rdb *redis.Client, logger *zap.Logger) *ParseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseCache{
		logger:  logger,
		rdb:     rdb,
		entries: make(map[string]cacheEntry),
	}
}

// Key builds the cache key for one adapter invocation on one file.
func Key(tool, path string, size int64, modTime time.Time) string {
	return fmt.Sprintf("secfindings:parse:%s:%s:%d:%d", tool, path, size, modTime.UnixNano())
}

// Get returns the cached findings for key, if present and unexpired.
func (c *ParseCache) Get(ctx context.Context, key string) ([]finding.Finding, bool) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if err != redis.Nil {
				c.logger.Debug("parse cache get failed, falling back", zap.Error(err))
			}
			return nil, false
		}
		var findings []finding.Finding
		if err := json.Unmarshal(val, &findings); err != nil {
			c.logger.Debug("parse cache entry malformed, ignoring", zap.Error(err))
			return nil, false
		}
		return findings, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.findings, true
}

// Set stores findings under key with the cache's standard TTL. Failures are
// logged and otherwise ignored; the cache is a performance aid, never a
// source of truth.
func (c *ParseCache) Set(ctx context.Context, key string, findings []finding.Finding) {
	if c.rdb != nil {
		data, err := json.Marshal(findings)
		if err != nil {
			c.logger.Debug("parse cache marshal failed", zap.Error(err))
			return
		}
		if err := c.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			c.logger.Debug("parse cache set failed", zap.Error(err))
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{findings: findings, expires: time.Now().Add(cacheTTL)}
}

// Purge drops all in-memory entries past their expiry. No-op when backed by
// redis, which expires keys natively.
func (c *ParseCache) Purge() {
	if c.rdb != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}
