package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/store"
)

func seedItems(t *testing.T, st *store.FakeStore, items ...domain.CatalogItem) {
	t.Helper()
	coll := st.Collection(store.CollectionItems)
	for _, it := range items {
		doc, err := store.NewDocument(it.ID, it)
		require.NoError(t, err)
		require.NoError(t, coll.Put(context.Background(), doc))
	}
}

func newTestEngine(t *testing.T, items ...domain.CatalogItem) *Engine {
	t.Helper()
	st := store.NewFakeStore()
	seedItems(t, st, items...)
	return New(st, cache.NewCaches(), 0)
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSearch_TextRelevanceOrder(t *testing.T) {
	engine := newTestEngine(t,
		domain.CatalogItem{ID: "1", Name: "Koskenkorva Viina", Producer: "Altia", Country: "Suomi", Type: "viinat", Price: 14.99},
		domain.CatalogItem{ID: "2", Name: "Suomi Viina", Producer: "Helsinki Distilling", Country: "Suomi", Type: "viinat", Price: 19.99},
		domain.CatalogItem{ID: "3", Name: "Chablis Grand Cru", Producer: "Louis Jadot", Country: "Ranska", Type: "valkoviinit", Price: 49.99},
	)

	page, err := engine.Search(context.Background(), domain.SearchFilters{Query: "suomi viina"}, domain.SearchOptions{})
	require.NoError(t, err)

	// The exact phrase in the name beats words scattered across fields.
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Suomi Viina", page.Items[0].Name)
	assert.Equal(t, "Koskenkorva Viina", page.Items[1].Name)
	assert.Equal(t, 2, page.Total)
	assert.False(t, page.HasMore)
}

func TestSearch_AllWordsRequired(t *testing.T) {
	engine := newTestEngine(t,
		domain.CatalogItem{ID: "1", Name: "Laphroaig 10", Producer: "Laphroaig", Country: "Skotlanti", Price: 54.98},
		domain.CatalogItem{ID: "2", Name: "Ardbeg Uigeadail", Producer: "Ardbeg", Country: "Skotlanti", Price: 89.99},
	)

	page, err := engine.Search(context.Background(), domain.SearchFilters{Query: "laphroaig skotlanti"}, domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].ID)
}

func TestSearch_TextWithStructuredFilters(t *testing.T) {
	engine := newTestEngine(t,
		domain.CatalogItem{ID: "1", Name: "Talisker 10", Type: "viskit", Country: "Skotlanti", Price: 59.99},
		domain.CatalogItem{ID: "2", Name: "Talisker Storm", Type: "viskit", Country: "Skotlanti", Price: 72.50},
		domain.CatalogItem{ID: "3", Name: "Talisker-lonkero", Type: "juomasekoitukset", Country: "Suomi", Price: 3.49},
	)

	page, err := engine.Search(context.Background(),
		domain.SearchFilters{Query: "talisker", Type: "viskit", MaxPrice: floatPtr(60)},
		domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Talisker 10", page.Items[0].Name)
}

func TestSearch_SmokinessRangeAppliedInProcess(t *testing.T) {
	smoky := domain.CatalogItem{ID: "1", Name: "Octomore", Type: "viskit", Price: 189.99}
	smoky.SetSmokiness(4)
	mild := domain.CatalogItem{ID: "2", Name: "Glengoyne", Type: "viskit", Price: 45.99}
	mild.SetSmokiness(0)
	unenriched := domain.CatalogItem{ID: "3", Name: "Mystery Malt", Type: "viskit", Price: 30}

	engine := newTestEngine(t, smoky, mild, unenriched)

	page, err := engine.Search(context.Background(),
		domain.SearchFilters{MinSmokiness: intPtr(2)}, domain.SearchOptions{})
	require.NoError(t, err)

	// Items without a smokiness level never match a smokiness range.
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Octomore", page.Items[0].Name)
	assert.Equal(t, 1, page.Total)
}

func TestSearch_StructuredPagination(t *testing.T) {
	items := make([]domain.CatalogItem, 57)
	for i := range items {
		items[i] = domain.CatalogItem{
			ID:    fmt.Sprintf("%03d", i),
			Name:  fmt.Sprintf("Item %03d", i),
			Type:  "oluet",
			Price: float64(i),
		}
	}
	engine := newTestEngine(t, items...)

	page, err := engine.Search(context.Background(),
		domain.SearchFilters{Type: "oluet"},
		domain.SearchOptions{Limit: 20, Offset: 40})
	require.NoError(t, err)

	assert.Equal(t, 57, page.Total)
	assert.Len(t, page.Items, 17)
	assert.False(t, page.HasMore)

	first, err := engine.Search(context.Background(),
		domain.SearchFilters{Type: "oluet"},
		domain.SearchOptions{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, first.Items, 20)
	assert.True(t, first.HasMore)
}

func TestSearch_TextPagination(t *testing.T) {
	items := make([]domain.CatalogItem, 25)
	for i := range items {
		items[i] = domain.CatalogItem{
			ID:   fmt.Sprintf("%03d", i),
			Name: fmt.Sprintf("Ahvenanmaan olut %03d", i),
		}
	}
	engine := newTestEngine(t, items...)

	page, err := engine.Search(context.Background(),
		domain.SearchFilters{Query: "olut"},
		domain.SearchOptions{Limit: 10, Offset: 20})
	require.NoError(t, err)

	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasMore)
}

func TestSearch_StructuredSortByPrice(t *testing.T) {
	engine := newTestEngine(t,
		domain.CatalogItem{ID: "1", Name: "A", Type: "oluet", Price: 9.5},
		domain.CatalogItem{ID: "2", Name: "B", Type: "oluet", Price: 2.5},
		domain.CatalogItem{ID: "3", Name: "C", Type: "oluet", Price: 100},
	)

	page, err := engine.Search(context.Background(),
		domain.SearchFilters{},
		domain.SearchOptions{SortBy: "price"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []string{"2", "1", "3"}, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
}

func TestSearch_CachesResultPages(t *testing.T) {
	st := store.NewFakeStore()
	seedItems(t, st,
		domain.CatalogItem{ID: "1", Name: "Aura", Type: "oluet", Price: 2.5},
	)
	engine := New(st, cache.NewCaches(), 0)
	ctx := context.Background()

	first, err := engine.Search(ctx, domain.SearchFilters{Type: "oluet"}, domain.SearchOptions{})
	require.NoError(t, err)

	// A new item does not show up until the cached page expires, even when
	// the same filters are built in a different order.
	seedItems(t, st, domain.CatalogItem{ID: "2", Name: "Olvi", Type: "oluet", Price: 2.8})
	second, err := engine.Search(ctx, domain.SearchFilters{Type: "oluet"}, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, second.Items, 1)
}

func TestSearch_CaseDifferentFiltersDoNotShareCachedPages(t *testing.T) {
	engine := newTestEngine(t,
		domain.CatalogItem{ID: "1", Name: "Koskenkorva Viina", Type: "Viinat", Price: 14.99},
	)
	ctx := context.Background()

	match, err := engine.Search(ctx, domain.SearchFilters{Type: "Viinat"}, domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, match.Items, 1)

	// Store equality filtering is case-sensitive, so the lower-cased filter
	// is a different query and must not be served the cached page above.
	miss, err := engine.Search(ctx, domain.SearchFilters{Type: "viinat"}, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, miss.Items)
	assert.Equal(t, 0, miss.Total)
}

func TestSearch_DefaultLimitApplied(t *testing.T) {
	items := make([]domain.CatalogItem, 30)
	for i := range items {
		items[i] = domain.CatalogItem{ID: fmt.Sprintf("%03d", i), Name: fmt.Sprintf("Item %03d", i)}
	}
	engine := newTestEngine(t, items...)

	page, err := engine.Search(context.Background(), domain.SearchFilters{}, domain.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultLimit)
	assert.Equal(t, DefaultLimit, page.Limit)
	assert.True(t, page.HasMore)
}
