package catalog

import (
	"context"
	"fmt"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/store"
)

// ImportSeed loads a bundled snapshot through the same validated upsert path
// as a live sync. Used by the bootstrap check when the store is empty.
func (s *Service) ImportSeed(ctx context.Context, bundle *domain.SeedBundle) error {
	log := logger.FromContext(ctx)

	valid, invalid := s.validator.Partition(bundle.Items)
	if len(invalid) > 0 {
		log.Warn("seed bundle contains invalid items", "invalid", len(invalid))
	}

	itemDocs := make([]store.Document, 0, len(valid))
	for _, item := range valid {
		doc, err := store.NewDocument(item.ID, item)
		if err != nil {
			return fmt.Errorf("encode seed item %s: %w", item.ID, err)
		}
		itemDocs = append(itemDocs, doc)
	}
	if err := s.bulkUpsert(ctx, s.items, itemDocs); err != nil {
		return fmt.Errorf("import seed items: %w", err)
	}

	outletDocs := make([]store.Document, 0, len(bundle.Outlets))
	for _, outlet := range bundle.Outlets {
		doc, err := store.NewDocument(outlet.ID, outlet)
		if err != nil {
			return fmt.Errorf("encode seed outlet %s: %w", outlet.ID, err)
		}
		outletDocs = append(outletDocs, doc)
	}
	if err := s.bulkUpsert(ctx, s.outlets, outletDocs); err != nil {
		return fmt.Errorf("import seed outlets: %w", err)
	}

	log.Info("seed bundle imported",
		"version", bundle.Version, "items", len(valid), "outlets", len(bundle.Outlets))
	return nil
}
