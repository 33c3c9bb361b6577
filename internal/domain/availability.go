package domain

import "time"

// StockStatus is the tri-state availability classification.
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// Quantity thresholds for status classification.
const (
	stockLowThreshold = 5
)

// StatusForQuantity classifies a per-outlet quantity.
func StatusForQuantity(qty int) StockStatus {
	switch {
	case qty <= 0:
		return StockOutOfStock
	case qty <= stockLowThreshold:
		return StockLowStock
	default:
		return StockInStock
	}
}

// AvailabilityRecord is the stock of one item at one outlet at capture time.
// Identity is the (ItemID, OutletID) pair; each scrape overwrites the previous
// record, nothing ever deletes one.
type AvailabilityRecord struct {
	ItemID     string      `json:"item_id"`
	OutletID   string      `json:"outlet_id"`
	OutletName string      `json:"outlet_name,omitempty"`
	Quantity   int         `json:"quantity"`
	Status     StockStatus `json:"status"`
	CheckedAt  time.Time   `json:"checked_at"`
}

// Key returns the composite document id for the record.
func (a AvailabilityRecord) Key() string {
	return a.ItemID + ":" + a.OutletID
}

// AvailabilityResult is what callers get back from an availability lookup.
// Stale is set when the scrape failed and the last persisted records were
// returned instead.
type AvailabilityResult struct {
	ItemID    string               `json:"item_id"`
	Records   []AvailabilityRecord `json:"records"`
	FromCache bool                 `json:"from_cache"`
	Stale     bool                 `json:"stale"`
	CheckedAt time.Time            `json:"checked_at"`
}
