package scraper

import (
	"context"
	"fmt"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
)

// enrichmentExtractScript pulls the labeled free-text sections and the two
// tag classes from a product page. Pairing tags and certificate tags come
// from disjoint marker classes and must never be conflated. Free-text
// sections capture from the labeled heading until the next section boundary.
// Smokiness is the count of active icons inside its widget; -1 means the
// widget is absent.
const enrichmentExtractScript = `
(() => {
	const sectionText = (label) => {
		const headings = Array.from(document.querySelectorAll('h2, h3, .product-section__title'));
		const heading = headings.find(h => h.textContent.trim().toLowerCase().startsWith(label));
		if (!heading) return '';
		let text = '';
		let node = heading.nextElementSibling;
		while (node && !node.matches('h2, h3, .product-section__title')) {
			text += ' ' + (node.textContent || '');
			node = node.nextElementSibling;
		}
		return text.trim();
	};

	const tags = (selector) =>
		Array.from(document.querySelectorAll(selector)).map(el => el.textContent.trim()).filter(Boolean);

	const widget = document.querySelector('.smokiness-scale, [data-testid="smokiness"]');
	const smokiness = widget
		? widget.querySelectorAll('.icon--active, .smokiness-scale__step--active').length
		: -1;

	return {
		taste: sectionText('maku'),
		usage: sectionText('käyttötapa'),
		serving: sectionText('tarjoilu'),
		ingredients: sectionText('raaka-aineet'),
		pairings: tags('.food-pairing__tag, [data-testid="food-pairing"] .tag'),
		certificates: tags('.certificate__tag, [data-testid="certificate"] .tag'),
		smokiness: smokiness,
	};
})()
`

type enrichmentPayload struct {
	Taste        string   `json:"taste"`
	Usage        string   `json:"usage"`
	Serving      string   `json:"serving"`
	Ingredients  string   `json:"ingredients"`
	Pairings     []string `json:"pairings"`
	Certificates []string `json:"certificates"`
	Smokiness    int      `json:"smokiness"`
}

// FetchEnrichment extracts the enrichment fields from an item's product
// page. Free-text sections are bounded to cap memory and storage.
func (sc *Scraper) FetchEnrichment(ctx context.Context, itemID string) (domain.Enrichment, error) {
	var enrichment domain.Enrichment

	err := sc.session.do(ctx, "enrichment", func(ctx context.Context) error {
		log := logger.FromContext(ctx)

		if err := sc.session.driver.Navigate(ctx, sc.url(productPathFmt, itemID)); err != nil {
			return fmt.Errorf("open product page: %w", err)
		}
		if err := sc.session.checkChallenge(ctx); err != nil {
			return err
		}

		var payload enrichmentPayload
		if err := sc.session.driver.Evaluate(ctx, enrichmentExtractScript, &payload); err != nil {
			return fmt.Errorf("extract enrichment: %w", err)
		}

		enrichment = domain.Enrichment{
			TasteDescription:  truncate(payload.Taste, maxSectionChars),
			UsageTips:         truncate(payload.Usage, maxSectionChars),
			ServingSuggestion: truncate(payload.Serving, maxSectionChars),
			Ingredients:       truncate(payload.Ingredients, maxSectionChars),
			FoodPairings:      payload.Pairings,
			Certificates:      payload.Certificates,
		}
		if payload.Smokiness >= 0 && payload.Smokiness <= 4 {
			v := payload.Smokiness
			enrichment.Smokiness = &v
		}

		log.Debug("enrichment extracted", "item_id", itemID, "empty", enrichment.Empty())
		return nil
	})
	if err != nil {
		return domain.Enrichment{}, err
	}
	return enrichment, nil
}

// truncate bounds a section at max runes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
