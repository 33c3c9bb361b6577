package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
)

// availabilityPanelButton opens the per-outlet stock panel on a product page.
const availabilityPanelButton = `button[data-testid="store-availability"], .product-availability__toggle`

// availabilityExtractScript collects the per-outlet quantity rows from the
// opened panel. Quantities are shown as ranges ("10-50 kpl", "yli 100 kpl").
const availabilityExtractScript = `
(() => {
	const rows = [];
	document.querySelectorAll('.store-availability__row, [data-testid="availability-row"]').forEach(row => {
		const id = row.getAttribute('data-store-id') || '';
		const name = (row.querySelector('.store-availability__name')?.textContent || '').trim();
		const qty = (row.querySelector('.store-availability__amount')?.textContent || '').trim();
		if (id || name) rows.push({ outletId: id, outletName: name, quantityText: qty });
	});
	return rows;
})()
`

type availabilityRow struct {
	OutletID     string `json:"outletId"`
	OutletName   string `json:"outletName"`
	QuantityText string `json:"quantityText"`
}

// FetchAvailability navigates to the item page, opens the availability panel
// and extracts per-outlet quantities classified into the tri-state status.
func (sc *Scraper) FetchAvailability(ctx context.Context, itemID string) ([]domain.AvailabilityRecord, error) {
	var records []domain.AvailabilityRecord

	err := sc.session.do(ctx, "availability", func(ctx context.Context) error {
		log := logger.FromContext(ctx)

		if err := sc.session.driver.Navigate(ctx, sc.url(productPathFmt, itemID)); err != nil {
			return fmt.Errorf("open product page: %w", err)
		}
		if err := sc.session.checkChallenge(ctx); err != nil {
			return err
		}

		if err := sc.session.driver.Click(ctx, availabilityPanelButton); err != nil {
			return fmt.Errorf("open availability panel: %w", err)
		}

		var rows []availabilityRow
		if err := sc.session.driver.Evaluate(ctx, availabilityExtractScript, &rows); err != nil {
			return fmt.Errorf("extract availability rows: %w", err)
		}

		now := time.Now()
		records = records[:0]
		for _, row := range rows {
			qty := parseQuantityRange(row.QuantityText)
			records = append(records, domain.AvailabilityRecord{
				ItemID:     itemID,
				OutletID:   row.OutletID,
				OutletName: row.OutletName,
				Quantity:   qty,
				Status:     domain.StatusForQuantity(qty),
				CheckedAt:  now,
			})
		}

		log.Debug("availability extracted", "item_id", itemID, "outlets", len(records))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// parseQuantityRange turns the site's quantity phrases into a conservative
// count: the lower bound of a range, 0 for out-of-stock markers.
func parseQuantityRange(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.Contains(s, "loppu") || strings.Contains(s, "ei saatavilla") {
		return 0
	}

	// "yli 100 kpl" -> 100
	if rest, ok := strings.CutPrefix(s, "yli "); ok {
		return firstNumber(rest)
	}
	// "alle 5 kpl" -> lower bound below the stated cap
	if rest, ok := strings.CutPrefix(s, "alle "); ok {
		n := firstNumber(rest)
		if n > 0 {
			return n - 1
		}
		return 0
	}
	// "10-50 kpl" / "10–50 kpl" -> 10
	return firstNumber(s)
}

func firstNumber(s string) int {
	n := -1
	for _, r := range s {
		if r >= '0' && r <= '9' {
			if n < 0 {
				n = 0
			}
			n = n*10 + int(r-'0')
			continue
		}
		if n >= 0 {
			break
		}
	}
	if n < 0 {
		return 0
	}
	return n
}
