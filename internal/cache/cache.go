package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/metrics"
)

// Fast is the bounded in-process cache tier: least-recently-used eviction
// plus a per-entry time-to-live. Staleness is resolved by TTL expiry or
// explicit re-fetch; there is no invalidation-by-dependency.
type Fast[V any] struct {
	name string
	lru  *expirable.LRU[string, V]
}

// NewFast creates a fast-tier cache. name labels the hit/miss metrics.
func NewFast[V any](name string, size int, ttl time.Duration) *Fast[V] {
	return &Fast[V]{
		name: name,
		lru:  expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// Get retrieves an entry, recording the hit or miss.
func (c *Fast[V]) Get(key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
	return v, ok
}

// Set stores an entry.
func (c *Fast[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Remove drops a single entry.
func (c *Fast[V]) Remove(key string) {
	c.lru.Remove(key)
}

// Clear removes all entries.
func (c *Fast[V]) Clear() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Fast[V]) Len() int {
	return c.lru.Len()
}

// Fast-tier sizing per use case.
const (
	ItemCacheSize = 5000
	ItemCacheTTL  = time.Hour

	SearchCacheSize = 500
	SearchCacheTTL  = 15 * time.Minute

	AvailabilityCacheSize = 1000
	AvailabilityCacheTTL  = time.Hour

	RatingCacheSize = 500
	RatingCacheTTL  = time.Hour
)

// Caches bundles the typed fast-tier caches used across the service. The
// durable tier lives in the persistent store (availability records and
// positive rating results) and is managed by its consumers.
type Caches struct {
	Items        *Fast[*domain.CatalogItem]
	Search       *Fast[*domain.Page]
	Availability *Fast[*domain.AvailabilityResult]
	Ratings      *Fast[*domain.ExternalRating]
}

// NewCaches creates the standard cache set with default sizes and TTLs.
func NewCaches() *Caches {
	return &Caches{
		Items:        NewFast[*domain.CatalogItem]("items", ItemCacheSize, ItemCacheTTL),
		Search:       NewFast[*domain.Page]("search", SearchCacheSize, SearchCacheTTL),
		Availability: NewFast[*domain.AvailabilityResult]("availability", AvailabilityCacheSize, AvailabilityCacheTTL),
		Ratings:      NewFast[*domain.ExternalRating]("ratings", RatingCacheSize, RatingCacheTTL),
	}
}

// Clear empties every fast-tier cache. Used after syncs rewrite the catalog.
func (c *Caches) Clear() {
	c.Items.Clear()
	c.Search.Clear()
	c.Availability.Clear()
	c.Ratings.Clear()
}
