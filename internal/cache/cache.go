// Package cache provides a Redis-backed read-through cache for provider
// search results. Entries are CBOR-encoded and keyed by a digest of the
// search parameters plus the geohash cell of the search origin, so nearby
// origins share cached results. The cache fails open: Redis errors degrade
// to misses and are logged, never surfaced to callers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/tablescout/internal/geo"
	"github.com/onnwee/tablescout/internal/place"
)

// DefaultTTL bounds staleness of cached provider results. Restaurant open
// state changes on hour boundaries, so short TTLs keep the open signal honest.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "tablescout:search:"

// SearchCache caches normalized provider results in Redis. A nil *SearchCache
// is valid and behaves as an always-miss cache, so callers need no branching
// when Redis is not configured.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a SearchCache. A ttl of zero or less falls back to DefaultTTL;
// a nil logger falls back to slog.Default.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchCache{client: client, ttl: ttl, logger: logger}
}

// Key builds a cache key from the search kind ("text" or "nearby"), the query
// string, the search origin, and the requested result count. The origin is
// reduced to its geohash cell before hashing so small coordinate jitter maps
// to the same entry.
func Key(kind, query string, origin *place.Point, size int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%d", kind, query, geo.CellKey(origin), size))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached places for key, or ok=false on a miss. Decode and
// transport failures count as misses.
func (c *SearchCache) Get(ctx context.Context, key string) ([]place.Place, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("search cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var places []place.Place
	if err := cbor.Unmarshal(data, &places); err != nil {
		c.logger.Warn("search cache entry corrupt, dropping", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return places, true
}

// Set stores places under key for the configured TTL. Failures are logged
// and otherwise ignored.
func (c *SearchCache) Set(ctx context.Context, key string, places []place.Place) {
	if c == nil || c.client == nil {
		return
	}

	data, err := cbor.Marshal(places)
	if err != nil {
		c.logger.Warn("search cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("search cache write failed", "key", key, "error", err)
	}
}
