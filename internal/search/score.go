package search

import (
	"strings"

	"github.com/jmakela/bottlecat/internal/domain"
)

// Relevance scores, assigned by the first matching rule.
const (
	scorePhraseInName     = 100
	scoreAllWordsInName   = 80
	scorePhraseInProducer = 60
	scoreAllWordsProducer = 50
	scorePhraseInField    = 40
	scoreAllWordsInField  = 30
	scoreWordsAcross      = 20
)

// searchableFields returns the free-text matching surface of an item, name
// and producer first. All scoring is done on lower-cased copies.
func searchableFields(it *domain.CatalogItem) []string {
	return []string{
		strings.ToLower(it.Name),
		strings.ToLower(it.Producer),
		strings.ToLower(it.Country),
		strings.ToLower(it.Region),
		strings.ToLower(it.Type),
		strings.ToLower(it.Subtype),
		strings.ToLower(it.Description),
		strings.ToLower(it.Varietal),
	}
}

func containsAllWords(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

// isCandidate keeps an item only when every query word appears somewhere in
// the concatenation of its searchable fields.
func isCandidate(fields []string, words []string) bool {
	combined := strings.Join(fields, " ")
	return containsAllWords(combined, words)
}

// score assigns the relevance score by the first matching rule, in fixed
// priority order. It assumes isCandidate already passed, so the floor is the
// multi-field score.
func score(fields []string, phrase string, words []string) int {
	name, producer := fields[0], fields[1]

	if strings.Contains(name, phrase) {
		return scorePhraseInName
	}
	if containsAllWords(name, words) {
		return scoreAllWordsInName
	}
	if strings.Contains(producer, phrase) {
		return scorePhraseInProducer
	}
	if containsAllWords(producer, words) {
		return scoreAllWordsProducer
	}
	for _, f := range fields[2:] {
		if strings.Contains(f, phrase) {
			return scorePhraseInField
		}
	}
	for _, f := range fields[2:] {
		if containsAllWords(f, words) {
			return scoreAllWordsInField
		}
	}
	return scoreWordsAcross
}
