package domain

import (
	"strings"
	"time"
)

// ExternalRating is a community rating fetched from a third-party site.
// Persisted without expiry as a positive-result cache; failed lookups are
// never persisted.
type ExternalRating struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Producer    string    `json:"producer,omitempty"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	SourceURL   string    `json:"source_url"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// RatingKey builds the cache key for a name+producer lookup. Normalization
// keeps logically identical lookups colliding regardless of casing/spacing.
func RatingKey(name, producer string) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
	}
	if producer == "" {
		return norm(name)
	}
	return norm(name) + "|" + norm(producer)
}
