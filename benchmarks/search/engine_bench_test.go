package search_bench

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/search"
	"github.com/jmakela/bottlecat/internal/store"
)

// seedCatalog fills the fake store with a synthetic catalog large enough to
// make scoring and sorting costs visible.
func seedCatalog(b *testing.B, st store.Store, n int) {
	b.Helper()

	types := []string{"punaviinit", "valkoviinit", "oluet", "viskit", "viinat"}
	countries := []string{"Suomi", "Ranska", "Italia", "Skotlanti", "Espanja"}

	items := st.Collection(store.CollectionItems)
	batch := make([]store.Document, 0, store.MaxBatchSize)
	for i := 0; i < n; i++ {
		item := domain.CatalogItem{
			ID:             fmt.Sprintf("%06d", i),
			Name:           fmt.Sprintf("Tuote %d erikoiserä", i),
			Producer:       fmt.Sprintf("Tuottaja %d", i%200),
			Type:           types[i%len(types)],
			Country:        countries[i%len(countries)],
			Price:          float64(5 + i%95),
			AlcoholPercent: float64(4 + i%40),
		}
		doc, err := store.NewDocument(item.ID, item)
		if err != nil {
			b.Fatal(err)
		}
		batch = append(batch, doc)
		if len(batch) == store.MaxBatchSize {
			if err := items.BulkPut(context.Background(), batch); err != nil {
				b.Fatal(err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := items.BulkPut(context.Background(), batch); err != nil {
			b.Fatal(err)
		}
	}
}

func newBenchEngine(b *testing.B, n int) (*search.Engine, *cache.Caches) {
	b.Helper()
	st := store.NewFakeStore()
	seedCatalog(b, st, n)
	caches := cache.NewCaches()
	return search.New(st, caches, 0), caches
}

func BenchmarkSearch_TextQuery(b *testing.B) {
	engine, caches := newBenchEngine(b, 10000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Clearing the page cache forces the full scoring path each run.
		caches.Clear()
		_, err := engine.Search(ctx, domain.SearchFilters{Query: "erikoiserä"}, domain.SearchOptions{Limit: 20})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch_TextQueryCached(b *testing.B) {
	engine, _ := newBenchEngine(b, 10000)
	ctx := context.Background()

	// Warm the page cache once.
	if _, err := engine.Search(ctx, domain.SearchFilters{Query: "erikoiserä"}, domain.SearchOptions{Limit: 20}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := engine.Search(ctx, domain.SearchFilters{Query: "erikoiserä"}, domain.SearchOptions{Limit: 20})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch_Structured(b *testing.B) {
	engine, caches := newBenchEngine(b, 10000)
	ctx := context.Background()
	minPrice := 20.0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		caches.Clear()
		_, err := engine.Search(ctx, domain.SearchFilters{Type: "oluet", MinPrice: &minPrice}, domain.SearchOptions{Limit: 20, SortBy: "price"})
		if err != nil {
			b.Fatal(err)
		}
	}
}
