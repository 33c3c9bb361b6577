package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/concurrency"
	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/pricelist"
	"github.com/jmakela/bottlecat/internal/store"
)

// SnapshotSource fetches and parses the published price list snapshot.
type SnapshotSource interface {
	FetchItems(ctx context.Context) (*pricelist.ParseResult, error)
}

// SiteScraper is the live-site extraction surface the catalog consumes.
type SiteScraper interface {
	FetchAvailability(ctx context.Context, itemID string) ([]domain.AvailabilityRecord, error)
	FetchEnrichment(ctx context.Context, itemID string) (domain.Enrichment, error)
	FetchOutlets(ctx context.Context) ([]domain.Outlet, error)
}

// Service owns the catalog: ingesting snapshots, serving item lookups and
// scraping live facts on demand.
type Service struct {
	items        store.Collection
	outlets      store.Collection
	availability store.Collection
	syncRuns     store.Collection

	caches    *cache.Caches
	source    SnapshotSource
	scraper   SiteScraper
	validator *pricelist.Validator
	locks     *concurrency.LockManager

	now func() time.Time
}

// NewService wires the catalog service over the document store.
func NewService(st store.Store, caches *cache.Caches, source SnapshotSource, scraper SiteScraper) *Service {
	return &Service{
		items:        st.Collection(store.CollectionItems),
		outlets:      st.Collection(store.CollectionOutlets),
		availability: st.Collection(store.CollectionAvailability),
		syncRuns:     st.Collection(store.CollectionSyncRuns),
		caches:       caches,
		source:       source,
		scraper:      scraper,
		validator:    pricelist.NewValidator(),
		locks:        concurrency.NewLockManager(),
		now:          time.Now,
	}
}

// GetItem returns one catalog item, cache-first.
func (s *Service) GetItem(ctx context.Context, id string) (*domain.CatalogItem, error) {
	if item, ok := s.caches.Items.Get(id); ok {
		return item, nil
	}

	doc, err := s.items.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}

	item, err := store.Decode[domain.CatalogItem](*doc)
	if err != nil {
		return nil, fmt.Errorf("decode item %s: %w", id, err)
	}
	item.CreatedAt = doc.CreatedAt
	item.UpdatedAt = doc.UpdatedAt

	s.caches.Items.Set(id, &item)
	return &item, nil
}

// EnrichItem returns the item with its product-page enrichment fields,
// scraping them at most once per item. A failed scrape degrades to the base
// item rather than failing the lookup.
func (s *Service) EnrichItem(ctx context.Context, id string) (*domain.CatalogItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.HasEnrichment() {
		return item, nil
	}

	// Concurrent lookups for the same unenriched item would each launch a
	// scrape; the per-item lock lets the first one win.
	mu := s.locks.GetLock("enrich:" + id)
	mu.Lock()
	defer mu.Unlock()

	if item, err = s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	if item.HasEnrichment() {
		return item, nil
	}

	log := logger.FromContext(ctx)
	enrichment, err := s.scraper.FetchEnrichment(ctx, id)
	if err != nil {
		log.Warn("enrichment scrape failed, serving base item", "item_id", id, "error", err)
		return item, nil
	}
	if enrichment.Empty() {
		log.Debug("product page had no enrichment fields", "item_id", id)
		return item, nil
	}

	enriched := *item
	enriched.MergeEnrichment(enrichment)

	doc, err := store.NewDocument(id, enriched)
	if err != nil {
		return nil, fmt.Errorf("encode enriched item %s: %w", id, err)
	}
	if err := s.items.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist enriched item %s: %w", id, err)
	}

	s.caches.Items.Set(id, &enriched)
	return &enriched, nil
}

// ListOutlets returns outlets, optionally narrowed to a city and to outlets
// open right now. Open-now filtering degrades closed: stale hours never count
// as open.
func (s *Service) ListOutlets(ctx context.Context, city string, openNow bool, limit int) ([]domain.Outlet, error) {
	if limit <= 0 || limit > maxOutletListLimit {
		limit = maxOutletListLimit
	}

	q := store.Query{OrderBy: "name", Limit: limit}
	if city != "" {
		q.Conds = append(q.Conds, store.Where("city", store.OpEq, city))
	}
	docs, err := s.outlets.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list outlets: %w", err)
	}
	outlets, err := store.DecodeAll[domain.Outlet](docs)
	if err != nil {
		return nil, fmt.Errorf("decode outlets: %w", err)
	}

	if !openNow {
		return outlets, nil
	}
	now := s.now()
	open := outlets[:0]
	for i := range outlets {
		if outlets[i].IsOpenNow(now) {
			open = append(open, outlets[i])
		}
	}
	return open, nil
}
