package datasource

import (
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/value-better/internal/metrics"
	"github.com/yourusername/value-better/internal/models"
)

// OddsCache keeps recent odds responses per query to spare the provider quota
type OddsCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  uint64
	missCount uint64
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Items   int
	HitRate float64
}

// NewOddsCache creates a cache. A non-positive ttl returns nil, which callers treat
// as caching disabled.
func NewOddsCache(ttl time.Duration) *OddsCache {
	if ttl <= 0 {
		return nil
	}
	return &OddsCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get returns the cached payloads for a query
func (c *OddsCache) Get(query Query) ([]models.MatchPayload, bool) {
	if v, found := c.cache.Get(query.Key()); found {
		if payloads, ok := v.([]models.MatchPayload); ok {
			atomic.AddUint64(&c.hitCount, 1)
			metrics.RecordCacheHit()
			return payloads, true
		}
	}
	atomic.AddUint64(&c.missCount, 1)
	metrics.RecordCacheMiss()
	return nil, false
}

// Set stores payloads for a query
func (c *OddsCache) Set(query Query, payloads []models.MatchPayload) {
	c.cache.Set(query.Key(), payloads, c.ttl)
}

// Flush removes all entries
func (c *OddsCache) Flush() {
	c.cache.Flush()
}

// Stats returns hit and miss counts
func (c *OddsCache) Stats() CacheStats {
	hits := atomic.LoadUint64(&c.hitCount)
	misses := atomic.LoadUint64(&c.missCount)
	stats := CacheStats{Hits: hits, Misses: misses, Items: c.cache.ItemCount()}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}
