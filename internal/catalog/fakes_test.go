package catalog

import (
	"context"
	"sync"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/pricelist"
)

type fakeSource struct {
	result *pricelist.ParseResult
	err    error
	calls  int
}

func (f *fakeSource) FetchItems(ctx context.Context) (*pricelist.ParseResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeScraper struct {
	mu sync.Mutex

	availability    []domain.AvailabilityRecord
	availabilityErr error
	enrichment      domain.Enrichment
	enrichmentErr   error
	outlets         []domain.Outlet
	outletsErr      error

	availabilityCalls int
	enrichmentCalls   int
	outletCalls       int
}

func (f *fakeScraper) FetchAvailability(ctx context.Context, itemID string) ([]domain.AvailabilityRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availabilityCalls++
	if f.availabilityErr != nil {
		return nil, f.availabilityErr
	}
	return f.availability, nil
}

func (f *fakeScraper) FetchEnrichment(ctx context.Context, itemID string) (domain.Enrichment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrichmentCalls++
	if f.enrichmentErr != nil {
		return domain.Enrichment{}, f.enrichmentErr
	}
	return f.enrichment, nil
}

func (f *fakeScraper) FetchOutlets(ctx context.Context) ([]domain.Outlet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outletCalls++
	if f.outletsErr != nil {
		return nil, f.outletsErr
	}
	return f.outlets, nil
}
