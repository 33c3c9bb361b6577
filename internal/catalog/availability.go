package catalog

import (
	"context"
	"fmt"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/store"
)

// GetOrScrapeAvailability returns per-outlet stock for an item. The fast
// cache answers first unless forceRefresh is set; otherwise a live scrape
// runs, and on scrape failure the last persisted records are served flagged
// as stale. Only a failure with no persisted fallback surfaces as an error.
func (s *Service) GetOrScrapeAvailability(ctx context.Context, itemID string, forceRefresh bool) (*domain.AvailabilityResult, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	if !forceRefresh {
		if cached, ok := s.caches.Availability.Get(itemID); ok {
			// Copy the record slice too, so callers can't reach back into
			// the cached result through the returned value.
			result := *cached
			result.Records = append([]domain.AvailabilityRecord(nil), cached.Records...)
			result.FromCache = true
			return &result, nil
		}
	}

	log := logger.FromContext(ctx)
	records, err := s.scraper.FetchAvailability(ctx, itemID)
	if err != nil {
		log.Warn("availability scrape failed, trying persisted records",
			"item_id", itemID, "error", err)
		return s.staleAvailability(ctx, itemID, err)
	}

	now := s.now()
	for _, record := range records {
		doc, err := store.NewDocument(record.Key(), record)
		if err != nil {
			return nil, fmt.Errorf("encode availability %s: %w", record.Key(), err)
		}
		if err := s.availability.Put(ctx, doc); err != nil {
			return nil, fmt.Errorf("persist availability %s: %w", record.Key(), err)
		}
	}

	result := &domain.AvailabilityResult{
		ItemID:    itemID,
		Records:   records,
		CheckedAt: now,
	}
	s.caches.Availability.Set(itemID, result)
	return result, nil
}

// staleAvailability serves the durable-tier records after a failed scrape.
// The scrape error wins when nothing was ever persisted for the item.
func (s *Service) staleAvailability(ctx context.Context, itemID string, scrapeErr error) (*domain.AvailabilityResult, error) {
	docs, err := s.availability.Find(ctx, store.Query{
		Conds:   []store.Condition{store.Where("item_id", store.OpEq, itemID)},
		OrderBy: "outlet_id",
	})
	if err != nil {
		return nil, fmt.Errorf("load persisted availability: %w", err)
	}
	if len(docs) == 0 {
		return nil, scrapeErr
	}

	records, err := store.DecodeAll[domain.AvailabilityRecord](docs)
	if err != nil {
		return nil, fmt.Errorf("decode persisted availability: %w", err)
	}

	checkedAt := records[0].CheckedAt
	for _, record := range records[1:] {
		if record.CheckedAt.After(checkedAt) {
			checkedAt = record.CheckedAt
		}
	}
	return &domain.AvailabilityResult{
		ItemID:    itemID,
		Records:   records,
		Stale:     true,
		CheckedAt: checkedAt,
	}, nil
}
