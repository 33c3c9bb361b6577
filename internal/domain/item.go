package domain

import "time"

// CatalogItem is a single product in the catalog. The base fields come from the
// published price list; the enrichment fields are nullable and filled in lazily
// from the product page, at most once per item.
type CatalogItem struct {
	ID             string  `json:"id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Producer       string  `json:"producer,omitempty"`
	Type           string  `json:"type,omitempty"`
	Subtype        string  `json:"subtype,omitempty"`
	Country        string  `json:"country,omitempty"`
	Region         string  `json:"region,omitempty"`
	Varietal       string  `json:"varietal,omitempty"`
	Vintage        *int    `json:"vintage,omitempty"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price" validate:"gte=0"`
	PricePerLitre  float64 `json:"price_per_litre,omitempty"`
	BottleSize     float64 `json:"bottle_size,omitempty"` // litres
	AlcoholPercent float64 `json:"alcohol_percent" validate:"gte=0,lte=100"`
	Packaging      string  `json:"packaging,omitempty"`
	Closure        string  `json:"closure,omitempty"`
	Selection      string  `json:"selection,omitempty"`
	EAN            string  `json:"ean,omitempty"`

	// Enrichment fields, scraped from the product page.
	TasteDescription  *string  `json:"taste_description,omitempty"`
	UsageTips         *string  `json:"usage_tips,omitempty"`
	ServingSuggestion *string  `json:"serving_suggestion,omitempty"`
	FoodPairings      []string `json:"food_pairings,omitempty"`
	Certificates      []string `json:"certificates,omitempty"`
	Ingredients       *string  `json:"ingredients,omitempty"`
	Smokiness         *int     `json:"smokiness,omitempty"` // 0..4
	SmokinessLabel    *string  `json:"smokiness_label,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Smokiness scale labels, index = icon count on the product page.
var smokinessLabels = [5]string{
	"ei savuinen",
	"hennon savuinen",
	"savuinen",
	"voimakkaan savuinen",
	"erittäin savuinen",
}

// SmokinessLabelFor maps a 0-4 smokiness count to its display label.
// Out-of-range values return the empty string.
func SmokinessLabelFor(level int) string {
	if level < 0 || level > 4 {
		return ""
	}
	return smokinessLabels[level]
}

// SetSmokiness stores the level and its derived label together so the two
// can never drift apart.
func (i *CatalogItem) SetSmokiness(level int) {
	if level < 0 || level > 4 {
		return
	}
	label := SmokinessLabelFor(level)
	i.Smokiness = &level
	i.SmokinessLabel = &label
}

// HasEnrichment reports whether any enrichment field has been populated.
// Enrichment scraping is skipped entirely for items where this is true.
func (i *CatalogItem) HasEnrichment() bool {
	return i.TasteDescription != nil ||
		i.UsageTips != nil ||
		i.ServingSuggestion != nil ||
		len(i.FoodPairings) > 0 ||
		len(i.Certificates) > 0 ||
		i.Ingredients != nil ||
		i.Smokiness != nil
}

// MergeEnrichment copies scraped enrichment fields onto the item, leaving
// already-populated fields untouched.
func (i *CatalogItem) MergeEnrichment(e Enrichment) {
	if i.TasteDescription == nil && e.TasteDescription != "" {
		v := e.TasteDescription
		i.TasteDescription = &v
	}
	if i.UsageTips == nil && e.UsageTips != "" {
		v := e.UsageTips
		i.UsageTips = &v
	}
	if i.ServingSuggestion == nil && e.ServingSuggestion != "" {
		v := e.ServingSuggestion
		i.ServingSuggestion = &v
	}
	if len(i.FoodPairings) == 0 {
		i.FoodPairings = e.FoodPairings
	}
	if len(i.Certificates) == 0 {
		i.Certificates = e.Certificates
	}
	if i.Ingredients == nil && e.Ingredients != "" {
		v := e.Ingredients
		i.Ingredients = &v
	}
	if i.Smokiness == nil && e.Smokiness != nil {
		i.SetSmokiness(*e.Smokiness)
	}
}

// Enrichment holds the free-text and tag fields scraped from a product page.
type Enrichment struct {
	TasteDescription  string   `json:"taste_description,omitempty"`
	UsageTips         string   `json:"usage_tips,omitempty"`
	ServingSuggestion string   `json:"serving_suggestion,omitempty"`
	FoodPairings      []string `json:"food_pairings,omitempty"`
	Certificates      []string `json:"certificates,omitempty"`
	Ingredients       string   `json:"ingredients,omitempty"`
	Smokiness         *int     `json:"smokiness,omitempty"`
}

// Empty reports whether the scrape found nothing at all.
func (e Enrichment) Empty() bool {
	return e.TasteDescription == "" && e.UsageTips == "" && e.ServingSuggestion == "" &&
		len(e.FoodPairings) == 0 && len(e.Certificates) == 0 && e.Ingredients == "" &&
		e.Smokiness == nil
}
