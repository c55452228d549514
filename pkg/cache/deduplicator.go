package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent computations with the same key, so that
// identical expressions in one population are evaluated once.
type Deduplicator[V any] struct {
	group singleflight.Group
	mu    sync.Mutex
	stats DedupStats
}

// DedupStats represents deduplication statistics
type DedupStats struct {
	Requests     int64 `json:"requests"`
	Deduplicated int64 `json:"deduplicated"`
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator[V any]() *Deduplicator[V] {
	return &Deduplicator[V]{}
}

// Do runs fn once for all concurrent callers with the same key. shared
// reports whether the result was handed to more than one caller.
func (d *Deduplicator[V]) Do(key CacheKey, fn func() V) (v V, shared bool) {
	result, _, shared := d.group.Do(string(key), func() (interface{}, error) {
		return fn(), nil
	})

	d.mu.Lock()
	d.stats.Requests++
	if shared {
		d.stats.Deduplicated++
	}
	d.mu.Unlock()

	return result.(V), shared
}

// Stats returns deduplication statistics
func (d *Deduplicator[V]) Stats() DedupStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// DedupRate is the share of requests served by another caller's computation
func (d *Deduplicator[V]) DedupRate() float64 {
	s := d.Stats()
	if s.Requests == 0 {
		return 0.0
	}
	return float64(s.Deduplicated) / float64(s.Requests)
}
