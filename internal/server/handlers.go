package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jmakela/bottlecat/internal/domain"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.pool != nil {
		if err := s.pool.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	filters, opts, err := parseSearchQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := s.engine.Search(r.Context(), filters, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.catalog.EnrichItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	refresh := r.URL.Query().Get("refresh") == "true"

	result, err := s.catalog.GetOrScrapeAvailability(r.Context(), id, refresh)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetItemRating(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.catalog.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rating, err := s.ratings.Lookup(r.Context(), item.Name, item.Producer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if pageURL := q.Get("url"); pageURL != "" {
		rating, err := s.ratings.LookupURL(r.Context(), pageURL)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rating)
		return
	}

	rating, err := s.ratings.Lookup(r.Context(), q.Get("name"), q.Get("producer"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (s *Server) handleListOutlets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseIntParam(q.Get("limit"), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	outlets, err := s.catalog.ListOutlets(r.Context(), q.Get("city"), q.Get("open_now") == "true", limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outlets": outlets, "count": len(outlets)})
}

func (s *Server) handleSyncItems(w http.ResponseWriter, r *http.Request) {
	result, err := s.catalog.SyncItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSyncOutlets(w http.ResponseWriter, r *http.Request) {
	result, err := s.catalog.SyncOutlets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSyncRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	runs, err := s.catalog.ListSyncRuns(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func parseSearchQuery(r *http.Request) (domain.SearchFilters, domain.SearchOptions, error) {
	q := r.URL.Query()

	filters := domain.SearchFilters{
		Query:    q.Get("q"),
		Type:     q.Get("type"),
		Subtype:  q.Get("subtype"),
		Country:  q.Get("country"),
		Region:   q.Get("region"),
		Producer: q.Get("producer"),
	}

	var err error
	if filters.MinPrice, err = parseFloatParam(q.Get("min_price")); err != nil {
		return filters, domain.SearchOptions{}, err
	}
	if filters.MaxPrice, err = parseFloatParam(q.Get("max_price")); err != nil {
		return filters, domain.SearchOptions{}, err
	}
	if filters.MinAlcohol, err = parseFloatParam(q.Get("min_alcohol")); err != nil {
		return filters, domain.SearchOptions{}, err
	}
	if filters.MaxAlcohol, err = parseFloatParam(q.Get("max_alcohol")); err != nil {
		return filters, domain.SearchOptions{}, err
	}
	if filters.MinSmokiness, err = parseIntPtrParam(q.Get("min_smokiness")); err != nil {
		return filters, domain.SearchOptions{}, err
	}
	if filters.MaxSmokiness, err = parseIntPtrParam(q.Get("max_smokiness")); err != nil {
		return filters, domain.SearchOptions{}, err
	}

	opts := domain.SearchOptions{
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
	}
	if opts.Limit, err = parseIntParam(q.Get("limit"), 0); err != nil {
		return filters, opts, err
	}
	if opts.Offset, err = parseIntParam(q.Get("offset"), 0); err != nil {
		return filters, opts, err
	}
	return filters, opts, nil
}

func parseFloatParam(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, raw)
	}
	return &v, nil
}

func parseIntPtrParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, raw)
	}
	return &v, nil
}

func parseIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, raw)
	}
	return v, nil
}
