package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SearchFilters is the structured part of a catalog query. Zero values mean
// "no filter". Query is the optional free-text part.
type SearchFilters struct {
	Type         string   `json:"type,omitempty"`
	Subtype      string   `json:"subtype,omitempty"`
	Country      string   `json:"country,omitempty"`
	Region       string   `json:"region,omitempty"`
	Producer     string   `json:"producer,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinAlcohol   *float64 `json:"min_alcohol,omitempty"`
	MaxAlcohol   *float64 `json:"max_alcohol,omitempty"`
	MinSmokiness *int     `json:"min_smokiness,omitempty"`
	MaxSmokiness *int     `json:"max_smokiness,omitempty"`
	Query        string   `json:"query,omitempty"`
}

// CanonicalKey serializes the filter set with a stable field order so that
// logically identical filter combinations always produce the same cache key,
// regardless of how the struct was populated. Structured values keep their
// case: store equality filtering is case-sensitive, so "Viinat" and "viinat"
// are different queries. Only the free-text component is folded, because
// scoring lower-cases it anyway.
func (f SearchFilters) CanonicalKey() string {
	parts := map[string]string{}
	add := func(k, v string) {
		if v != "" {
			parts[k] = v
		}
	}
	add("type", f.Type)
	add("subtype", f.Subtype)
	add("country", f.Country)
	add("region", f.Region)
	add("producer", f.Producer)
	add("q", strings.ToLower(strings.TrimSpace(f.Query)))
	if f.MinPrice != nil {
		add("min_price", fmt.Sprintf("%g", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		add("max_price", fmt.Sprintf("%g", *f.MaxPrice))
	}
	if f.MinAlcohol != nil {
		add("min_alc", fmt.Sprintf("%g", *f.MinAlcohol))
	}
	if f.MaxAlcohol != nil {
		add("max_alc", fmt.Sprintf("%g", *f.MaxAlcohol))
	}
	if f.MinSmokiness != nil {
		add("min_smoke", fmt.Sprintf("%d", *f.MinSmokiness))
	}
	if f.MaxSmokiness != nil {
		add("max_smoke", fmt.Sprintf("%d", *f.MaxSmokiness))
	}

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(parts[k])
	}
	return sb.String()
}

// HasText reports whether the query carries a free-text component.
func (f SearchFilters) HasText() bool {
	return strings.TrimSpace(f.Query) != ""
}

// SearchOptions controls ordering and pagination.
type SearchOptions struct {
	SortBy   string `json:"sort_by,omitempty"` // name | price | alcohol_percent
	SortDesc bool   `json:"sort_desc,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Page is one page of search results with exact-total pagination metadata.
type Page struct {
	Items   []CatalogItem `json:"items"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}
