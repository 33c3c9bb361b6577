package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
)

// outletCountScript returns how many outlet cards are currently rendered.
const outletCountScript = `document.querySelectorAll('.store-card, [data-testid="store-card"]').length`

// outletLoadMoreScript scrolls to the bottom and clicks the load-more button
// when present, returning whether anything was triggered.
const outletLoadMoreScript = `
(() => {
	window.scrollTo(0, document.body.scrollHeight);
	const btn = document.querySelector('.load-more, [data-testid="load-more"]');
	if (btn && !btn.disabled) { btn.click(); return true; }
	return false;
})()
`

// outletExtractScript collects the outlet cards into structured records.
const outletExtractScript = `
(() => {
	const outlets = [];
	document.querySelectorAll('.store-card, [data-testid="store-card"]').forEach(card => {
		outlets.push({
			id: card.getAttribute('data-store-id') || '',
			name: (card.querySelector('.store-card__name')?.textContent || '').trim(),
			address: (card.querySelector('.store-card__address')?.textContent || '').trim(),
			city: (card.querySelector('.store-card__city')?.textContent || '').trim(),
			postalCode: (card.querySelector('.store-card__postal')?.textContent || '').trim(),
			hoursToday: (card.querySelector('.store-card__hours-today')?.textContent || '').trim(),
			hoursTomorrow: (card.querySelector('.store-card__hours-tomorrow')?.textContent || '').trim(),
		});
	});
	return outlets;
})()
`

// outletLinksScript collects individual outlet page links, used by the
// fallback path when the listing extraction yields nothing.
const outletLinksScript = `
Array.from(document.querySelectorAll('a[href*="/myymalat/"]')).map(a => a.getAttribute('href')).filter(Boolean)
`

// outletPageExtractScript extracts one outlet from its own page.
const outletPageExtractScript = `
(() => {
	const el = document.querySelector('.store-page, main');
	if (!el) return null;
	return {
		id: el.getAttribute('data-store-id') || window.location.pathname.split('/').pop() || '',
		name: (document.querySelector('h1')?.textContent || '').trim(),
		address: (el.querySelector('.store-page__address')?.textContent || '').trim(),
		city: (el.querySelector('.store-page__city')?.textContent || '').trim(),
		postalCode: (el.querySelector('.store-page__postal')?.textContent || '').trim(),
		hoursToday: (el.querySelector('.store-page__hours-today')?.textContent || '').trim(),
		hoursTomorrow: (el.querySelector('.store-page__hours-tomorrow')?.textContent || '').trim(),
	};
})()
`

type outletPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	HoursToday    string `json:"hoursToday"`
	HoursTomorrow string `json:"hoursTomorrow"`
}

// FetchOutlets loads the outlet listing, drives its lazy loading until the
// visible count stabilizes, and extracts deduplicated outlets. If the
// listing yields nothing it falls back to visiting a bounded sample of
// individual outlet pages.
func (sc *Scraper) FetchOutlets(ctx context.Context) ([]domain.Outlet, error) {
	var outlets []domain.Outlet

	err := sc.session.do(ctx, "outlets", func(ctx context.Context) error {
		log := logger.FromContext(ctx)

		if err := sc.session.driver.Navigate(ctx, sc.session.baseURL+outletListPath); err != nil {
			return fmt.Errorf("open outlet listing: %w", err)
		}
		if err := sc.session.checkChallenge(ctx); err != nil {
			return err
		}

		if err := sc.exhaustLazyLoading(ctx); err != nil {
			return err
		}

		var payloads []outletPayload
		if err := sc.session.driver.Evaluate(ctx, outletExtractScript, &payloads); err != nil {
			return fmt.Errorf("extract outlets: %w", err)
		}

		outlets = dedupeOutlets(payloads)
		if len(outlets) > 0 {
			log.Debug("outlets extracted from listing", "count", len(outlets))
			return nil
		}

		log.Warn("outlet listing extraction yielded nothing, falling back to outlet pages")
		fallback, err := sc.fetchOutletsFallback(ctx)
		if err != nil {
			return err
		}
		outlets = fallback
		if len(outlets) == 0 {
			return domain.ErrScrapeEmpty
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outlets, nil
}

// exhaustLazyLoading scrolls/clicks until the rendered count stabilizes or
// the attempt cap is hit.
func (sc *Scraper) exhaustLazyLoading(ctx context.Context) error {
	prevCount := -1
	for attempt := 0; attempt < maxLoadMoreAttempts; attempt++ {
		var count int
		if err := sc.session.driver.Evaluate(ctx, outletCountScript, &count); err != nil {
			return fmt.Errorf("count outlet cards: %w", err)
		}
		if count == prevCount {
			return nil
		}
		prevCount = count

		var triggered bool
		if err := sc.session.driver.Evaluate(ctx, outletLoadMoreScript, &triggered); err != nil {
			return fmt.Errorf("trigger lazy loading: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sc.loadMoreWait):
		}
	}
	return nil
}

func (sc *Scraper) fetchOutletsFallback(ctx context.Context) ([]domain.Outlet, error) {
	var links []string
	if err := sc.session.driver.Evaluate(ctx, outletLinksScript, &links); err != nil {
		return nil, fmt.Errorf("collect outlet links: %w", err)
	}
	if len(links) > outletFallbackSample {
		links = links[:outletFallbackSample]
	}

	var payloads []outletPayload
	for _, link := range links {
		url := link
		if len(url) > 0 && url[0] == '/' {
			url = sc.session.baseURL + url
		}
		if err := sc.session.driver.Navigate(ctx, url); err != nil {
			continue
		}
		var payload *outletPayload
		if err := sc.session.driver.Evaluate(ctx, outletPageExtractScript, &payload); err != nil || payload == nil {
			continue
		}
		payloads = append(payloads, *payload)
	}
	return dedupeOutlets(payloads), nil
}

func dedupeOutlets(payloads []outletPayload) []domain.Outlet {
	seen := make(map[string]bool, len(payloads))
	now := time.Now()
	outlets := make([]domain.Outlet, 0, len(payloads))
	for _, p := range payloads {
		id := p.ID
		if id == "" {
			id = p.Name
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		outlets = append(outlets, domain.Outlet{
			ID:                id,
			Name:              p.Name,
			Address:           p.Address,
			City:              p.City,
			PostalCode:        p.PostalCode,
			OpenHoursToday:    p.HoursToday,
			OpenHoursTomorrow: p.HoursTomorrow,
			UpdatedAt:         now,
		})
	}
	return outlets
}
