package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/domain"
)

func TestFast_GetSetClear(t *testing.T) {
	c := cache.NewFast[string]("test", 10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	c.Clear()
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestFast_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.NewFast[int]("test-lru", 2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestFast_EntriesExpire(t *testing.T) {
	c := cache.NewFast[int]("test-ttl", 10, 20*time.Millisecond)

	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should have expired")
}

func TestCanonicalFilterKeysCollide(t *testing.T) {
	min := 10.0
	a := domain.SearchFilters{Country: "Suomi", Type: "viinit", MinPrice: &min}
	b := domain.SearchFilters{MinPrice: &min, Type: "viinit", Country: "Suomi"}

	c := cache.NewFast[*domain.Page]("test-search", 10, time.Minute)
	c.Set(a.CanonicalKey(), &domain.Page{Total: 7})

	page, ok := c.Get(b.CanonicalKey())
	assert.True(t, ok, "logically identical filters must share a cache key")
	assert.Equal(t, 7, page.Total)
}

func TestCanonicalFilterKeysPreserveValueCase(t *testing.T) {
	a := domain.SearchFilters{Type: "Viinat"}
	b := domain.SearchFilters{Type: "viinat"}

	// Equality filtering in the store is case-sensitive, so these are
	// different queries and must not collide on one cache key.
	assert.NotEqual(t, a.CanonicalKey(), b.CanonicalKey())

	// The free-text component is folded: scoring lower-cases it anyway.
	assert.Equal(t,
		domain.SearchFilters{Query: "Suomi Viina"}.CanonicalKey(),
		domain.SearchFilters{Query: "suomi viina"}.CanonicalKey())
}
