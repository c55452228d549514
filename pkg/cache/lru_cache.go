package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ComplexityCache memoizes expression complexity across scoring passes so
// that members rebuilt from the same expression are not recounted.
type ComplexityCache struct {
	cache  *lru.Cache[CacheKey, int]
	config *CacheConfig
	stats  *CacheStats
	mu     sync.Mutex
}

// NewComplexityCache creates a new LRU-bounded complexity cache
func NewComplexityCache(config *CacheConfig) (*ComplexityCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &ComplexityCache{
		config: config,
		stats:  &CacheStats{MaxSize: config.MaxSize},
	}
	cache, err := lru.NewWithEvict[CacheKey, int](config.MaxSize, func(CacheKey, int) {
		c.mu.Lock()
		c.stats.Evictions++
		c.mu.Unlock()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Get retrieves a complexity from the cache
func (c *ComplexityCache) Get(key CacheKey) (int, bool) {
	v, ok := c.cache.Get(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

// Set stores a complexity
func (c *ComplexityCache) Set(key CacheKey, complexity int) {
	c.cache.Add(key, complexity)
}

// GetOrCompute returns the cached complexity for key or computes and stores it.
// hit reports whether the value came from the cache.
func (c *ComplexityCache) GetOrCompute(key CacheKey, compute func() int) (complexity int, hit bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}
	v := compute()
	c.Set(key, v)
	return v, false
}

// Clear removes all values from the cache
func (c *ComplexityCache) Clear() {
	c.cache.Purge()
}

// Stats returns cache statistics
func (c *ComplexityCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := *c.stats
	stats.Size = c.cache.Len()
	stats.CalculateHitRate()
	return stats
}

// Len returns the number of items in the cache
func (c *ComplexityCache) Len() int {
	return c.cache.Len()
}
