package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/metrics"
	"github.com/jmakela/bottlecat/internal/store"
)

const (
	// DefaultLimit applies when the caller does not ask for a page size.
	DefaultLimit = 20
	// MaxLimit caps a requested page size.
	MaxLimit = 100
	// DefaultTextFetchBound covers the whole practical catalog size, so a
	// free-text query sees every candidate the structured filters allow.
	DefaultTextFetchBound = 10000
)

// Engine answers catalog queries. Equality and range filters are pushed down
// to the document store; free-text relevance is computed in-process because
// the store has no full-text index. Result pages are cached by the canonical
// filter key.
type Engine struct {
	items     store.Collection
	pages     *cache.Fast[*domain.Page]
	locale    language.Tag
	textBound int
}

// New creates an engine over the catalog item collection.
func New(st store.Store, caches *cache.Caches, textFetchBound int) *Engine {
	if textFetchBound <= 0 {
		textFetchBound = DefaultTextFetchBound
	}
	return &Engine{
		items:     st.Collection(store.CollectionItems),
		pages:     caches.Search,
		locale:    language.Finnish,
		textBound: textFetchBound,
	}
}

// Search runs one query and returns a deterministically ordered page.
func (e *Engine) Search(ctx context.Context, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.Page, error) {
	opts = normalizeOptions(opts)

	key := pageKey(filters, opts)
	if page, ok := e.pages.Get(key); ok {
		return page, nil
	}

	var (
		page *domain.Page
		err  error
	)
	if filters.HasText() {
		metrics.SearchesPerformed.WithLabelValues("fulltext").Inc()
		page, err = e.textSearch(ctx, filters, opts)
	} else {
		metrics.SearchesPerformed.WithLabelValues("structured").Inc()
		page, err = e.structuredSearch(ctx, filters, opts)
	}
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("search completed",
		"text", filters.HasText(), "total", page.Total, "returned", len(page.Items))

	e.pages.Set(key, page)
	return page, nil
}

// textSearch widens the store fetch to the text bound and matches, scores and
// orders candidates in-process.
func (e *Engine) textSearch(ctx context.Context, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.Page, error) {
	docs, err := e.items.Find(ctx, store.Query{
		Conds: storeConditions(filters),
		Limit: e.textBound,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	items, err := store.DecodeAll[domain.CatalogItem](docs)
	if err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	phrase := strings.ToLower(strings.TrimSpace(filters.Query))
	words := strings.Fields(phrase)

	type scored struct {
		item  domain.CatalogItem
		score int
	}
	matches := make([]scored, 0, len(items))
	for i := range items {
		fields := searchableFields(&items[i])
		if !isCandidate(fields, words) {
			continue
		}
		matches = append(matches, scored{item: items[i], score: score(fields, phrase, words)})
	}

	coll := collate.New(e.locale, collate.IgnoreCase)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return coll.CompareString(matches[i].item.Name, matches[j].item.Name) < 0
	})

	result := make([]domain.CatalogItem, 0, len(matches))
	for _, m := range matches {
		if !smokinessMatch(&m.item, filters) {
			continue
		}
		result = append(result, m.item)
	}
	return paginate(result, opts), nil
}

// structuredSearch relies on the store's own filtering and ordering. Only the
// nullable smokiness range has to be applied in-process, which forces the
// wide fetch bound for those queries.
func (e *Engine) structuredSearch(ctx context.Context, filters domain.SearchFilters, opts domain.SearchOptions) (*domain.Page, error) {
	conds := storeConditions(filters)
	orderBy, numeric := sortField(opts.SortBy)

	if filters.MinSmokiness != nil || filters.MaxSmokiness != nil {
		docs, err := e.items.Find(ctx, store.Query{
			Conds:        conds,
			OrderBy:      orderBy,
			OrderNumeric: numeric,
			Desc:         opts.SortDesc,
			Limit:        e.textBound,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch filtered items: %w", err)
		}
		items, err := store.DecodeAll[domain.CatalogItem](docs)
		if err != nil {
			return nil, fmt.Errorf("decode filtered items: %w", err)
		}
		kept := items[:0]
		for i := range items {
			if smokinessMatch(&items[i], filters) {
				kept = append(kept, items[i])
			}
		}
		return paginate(kept, opts), nil
	}

	total, err := e.items.Count(ctx, conds...)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	docs, err := e.items.Find(ctx, store.Query{
		Conds:        conds,
		OrderBy:      orderBy,
		OrderNumeric: numeric,
		Desc:         opts.SortDesc,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	items, err := store.DecodeAll[domain.CatalogItem](docs)
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &domain.Page{
		Items:   items,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: total > opts.Offset+opts.Limit,
	}, nil
}

// storeConditions translates the filters the store can express natively.
// The smokiness range stays in-process: the field is nullable and absent on
// unenriched items.
func storeConditions(f domain.SearchFilters) []store.Condition {
	var conds []store.Condition
	if f.Type != "" {
		conds = append(conds, store.Where("type", store.OpEq, f.Type))
	}
	if f.Subtype != "" {
		conds = append(conds, store.Where("subtype", store.OpEq, f.Subtype))
	}
	if f.Country != "" {
		conds = append(conds, store.Where("country", store.OpEq, f.Country))
	}
	if f.Region != "" {
		conds = append(conds, store.Where("region", store.OpEq, f.Region))
	}
	if f.Producer != "" {
		conds = append(conds, store.Where("producer", store.OpEq, f.Producer))
	}
	if f.MinPrice != nil {
		conds = append(conds, store.Where("price", store.OpGte, *f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, store.Where("price", store.OpLte, *f.MaxPrice))
	}
	if f.MinAlcohol != nil {
		conds = append(conds, store.Where("alcohol_percent", store.OpGte, *f.MinAlcohol))
	}
	if f.MaxAlcohol != nil {
		conds = append(conds, store.Where("alcohol_percent", store.OpLte, *f.MaxAlcohol))
	}
	return conds
}

func smokinessMatch(it *domain.CatalogItem, f domain.SearchFilters) bool {
	if f.MinSmokiness == nil && f.MaxSmokiness == nil {
		return true
	}
	if it.Smokiness == nil {
		return false
	}
	if f.MinSmokiness != nil && *it.Smokiness < *f.MinSmokiness {
		return false
	}
	if f.MaxSmokiness != nil && *it.Smokiness > *f.MaxSmokiness {
		return false
	}
	return true
}

func normalizeOptions(opts domain.SearchOptions) domain.SearchOptions {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}

func sortField(name string) (field string, numeric bool) {
	switch name {
	case "price":
		return "price", true
	case "alcohol_percent":
		return "alcohol_percent", true
	default:
		return "name", false
	}
}

func paginate(items []domain.CatalogItem, opts domain.SearchOptions) *domain.Page {
	total := len(items)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return &domain.Page{
		Items:   items[start:end],
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: total > opts.Offset+opts.Limit,
	}
}

func pageKey(filters domain.SearchFilters, opts domain.SearchOptions) string {
	return fmt.Sprintf("%s|sort=%s&desc=%t&limit=%d&offset=%d",
		filters.CanonicalKey(), opts.SortBy, opts.SortDesc, opts.Limit, opts.Offset)
}
