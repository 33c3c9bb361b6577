package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jmakela/bottlecat/internal/logger"
)

// tagResultsScript collects the product ids from the current search result
// page.
const tagResultsScript = `
Array.from(document.querySelectorAll('[data-product-id], .product-card'))
	.map(el => el.getAttribute('data-product-id') || '')
	.filter(Boolean)
`

// SearchByTag runs a site search scoped to a food-pairing tag and returns
// deduplicated candidate item ids, bounded by the site's own page size.
func (sc *Scraper) SearchByTag(ctx context.Context, tag string, limit int) ([]string, error) {
	if limit <= 0 || limit > sitePageCap {
		limit = sitePageCap
	}

	var ids []string
	err := sc.session.do(ctx, "tag_search", func(ctx context.Context) error {
		log := logger.FromContext(ctx)

		searchURL := sc.url(tagSearchFmt, url.QueryEscape(tag))
		if err := sc.session.driver.Navigate(ctx, searchURL); err != nil {
			return fmt.Errorf("open tag search: %w", err)
		}
		if err := sc.session.checkChallenge(ctx); err != nil {
			return err
		}

		var raw []string
		if err := sc.session.driver.Evaluate(ctx, tagResultsScript, &raw); err != nil {
			return fmt.Errorf("extract search results: %w", err)
		}

		seen := make(map[string]bool, len(raw))
		ids = ids[:0]
		for _, id := range raw {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}

		log.Debug("tag search extracted", "tag", tag, "candidates", len(ids))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
