package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmakela/bottlecat/internal/bootstrap"
	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/catalog"
	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/pricelist"
	"github.com/jmakela/bottlecat/internal/ratings"
	"github.com/jmakela/bottlecat/internal/search"
	"github.com/jmakela/bottlecat/internal/store"
)

const testAPIKey = "test-key"

type stubSource struct {
	items []domain.CatalogItem
}

func (s *stubSource) FetchItems(ctx context.Context) (*pricelist.ParseResult, error) {
	return &pricelist.ParseResult{Items: s.items}, nil
}

type stubScraper struct {
	availability []domain.AvailabilityRecord
	enrichment   domain.Enrichment
	outlets      []domain.Outlet
}

func (s *stubScraper) FetchAvailability(ctx context.Context, itemID string) ([]domain.AvailabilityRecord, error) {
	return s.availability, nil
}

func (s *stubScraper) FetchEnrichment(ctx context.Context, itemID string) (domain.Enrichment, error) {
	return s.enrichment, nil
}

func (s *stubScraper) FetchOutlets(ctx context.Context) ([]domain.Outlet, error) {
	return s.outlets, nil
}

type serverFixture struct {
	server  *Server
	store   *store.FakeStore
	source  *stubSource
	scraper *stubScraper
}

func newServerFixture(t *testing.T, seed []byte) *serverFixture {
	t.Helper()

	ratingSite := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="wine-card">
			<a href="/wines/1"><span class="wine-card__name">Koskenkorva Viina</span></a>
			<span class="average__number">3,8</span>
			<span class="rating-count">512</span>
		</div></body></html>`)
	}))
	t.Cleanup(ratingSite.Close)

	f := &serverFixture{
		store:   store.NewFakeStore(),
		source:  &stubSource{},
		scraper: &stubScraper{},
	}
	caches := cache.NewCaches()
	catalogSvc := catalog.NewService(f.store, caches, f.source, f.scraper)

	f.server = New(Options{
		Port:    0,
		APIKey:  testAPIKey,
		Catalog: catalogSvc,
		Search:  search.New(f.store, caches, 0),
		Ratings: ratings.NewService(ratingSite.URL, "test-agent", f.store, caches),
		Loader:  bootstrap.New(f.store, catalogSvc, seed),
	})
	return f
}

func (f *serverFixture) request(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAPI_RequiresAuth(t *testing.T) {
	f := newServerFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Healthz(t *testing.T) {
	f := newServerFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_SyncThenLookup(t *testing.T) {
	f := newServerFixture(t, nil)
	f.source.items = []domain.CatalogItem{
		{ID: "101", Name: "Koskenkorva Viina", Producer: "Anora", Type: "viinat", Price: 14.99, AlcoholPercent: 38},
	}

	rec := f.request(t, http.MethodPost, "/api/v1/sync/items")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[domain.SyncResult](t, rec)
	assert.Equal(t, 1, result.Added)

	rec = f.request(t, http.MethodGet, "/api/v1/items/101")
	require.Equal(t, http.StatusOK, rec.Code)
	item := decodeBody[domain.CatalogItem](t, rec)
	assert.Equal(t, "Koskenkorva Viina", item.Name)

	rec = f.request(t, http.MethodGet, "/api/v1/items/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SearchItems(t *testing.T) {
	f := newServerFixture(t, nil)
	f.source.items = []domain.CatalogItem{
		{ID: "1", Name: "Suomi Viina", Type: "viinat", Price: 19.99, AlcoholPercent: 38},
		{ID: "2", Name: "Koskenkorva Viina", Type: "viinat", Country: "Suomi", Price: 14.99, AlcoholPercent: 38},
		{ID: "3", Name: "Olvi IPA", Type: "oluet", Price: 3.49, AlcoholPercent: 5.5},
	}
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/v1/sync/items").Code)

	rec := f.request(t, http.MethodGet, "/api/v1/items?q=suomi+viina")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[domain.Page](t, rec)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Suomi Viina", page.Items[0].Name)

	rec = f.request(t, http.MethodGet, "/api/v1/items?type=oluet")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodeBody[domain.Page](t, rec)
	assert.Equal(t, 1, page.Total)

	rec = f.request(t, http.MethodGet, "/api/v1/items?min_price=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Availability(t *testing.T) {
	f := newServerFixture(t, nil)
	f.source.items = []domain.CatalogItem{
		{ID: "101", Name: "Koskenkorva Viina", Price: 14.99, AlcoholPercent: 38},
	}
	f.scraper.availability = []domain.AvailabilityRecord{
		{ItemID: "101", OutletID: "2101", Quantity: 12, Status: domain.StockInStock},
	}
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/v1/sync/items").Code)

	rec := f.request(t, http.MethodGet, "/api/v1/items/101/availability")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[domain.AvailabilityResult](t, rec)
	require.Len(t, result.Records, 1)
	assert.Equal(t, domain.StockInStock, result.Records[0].Status)
}

func TestAPI_Outlets(t *testing.T) {
	f := newServerFixture(t, nil)
	f.scraper.outlets = []domain.Outlet{
		{ID: "2101", Name: "Helsinki keskusta", City: "Helsinki"},
		{ID: "2105", Name: "Espoo Iso Omena", City: "Espoo"},
	}
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/v1/sync/outlets").Code)

	rec := f.request(t, http.MethodGet, "/api/v1/outlets?city=Espoo")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Outlets []domain.Outlet `json:"outlets"`
		Count   int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Espoo Iso Omena", body.Outlets[0].Name)
}

func TestAPI_Rating(t *testing.T) {
	f := newServerFixture(t, nil)

	rec := f.request(t, http.MethodGet, "/api/v1/rating?name=Koskenkorva+Viina")
	require.Equal(t, http.StatusOK, rec.Code)
	rating := decodeBody[domain.ExternalRating](t, rec)
	assert.InDelta(t, 3.8, rating.Rating, 0.001)
	assert.Equal(t, 512, rating.RatingCount)
}

func TestAPI_SyncRuns(t *testing.T) {
	f := newServerFixture(t, nil)
	f.source.items = []domain.CatalogItem{
		{ID: "101", Name: "Koskenkorva Viina", Price: 14.99, AlcoholPercent: 38},
	}
	require.Equal(t, http.StatusOK, f.request(t, http.MethodPost, "/api/v1/sync/items").Code)

	rec := f.request(t, http.MethodGet, "/api/v1/sync/runs")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs  []domain.SyncRun `json:"runs"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, domain.SyncCompleted, body.Runs[0].Status)
}

func TestAPI_EnsureDataSeedsEmptyStore(t *testing.T) {
	seed := []byte(`{
		"exportedAt": "2026-08-01T00:00:00Z",
		"version": 1,
		"items": [{"id": "000101", "name": "Koskenkorva Viina", "price": 14.99, "alcohol_percent": 38}],
		"outlets": []
	}`)
	f := newServerFixture(t, seed)

	// No sync has run; the first data request triggers the seed load.
	rec := f.request(t, http.MethodGet, "/api/v1/items/000101")
	require.Equal(t, http.StatusOK, rec.Code)
	item := decodeBody[domain.CatalogItem](t, rec)
	assert.Equal(t, "Koskenkorva Viina", item.Name)
}
