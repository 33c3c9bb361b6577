package ratings

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"

	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/store"
)

const (
	searchPathFmt  = "/search/wines?q=%s"
	requestTimeout = 15 * time.Second
)

// Service looks up community ratings from the external rating site. Results
// flow through both cache tiers: the fast tier for repeat lookups within a
// session, the durable tier for positive results only, with no expiry.
// Concurrent lookups for the same key share one in-flight request.
type Service struct {
	client    *http.Client
	baseURL   string
	userAgent string

	ratings store.Collection
	fast    *cache.Fast[*domain.ExternalRating]
	group   singleflight.Group

	now func() time.Time
}

// NewService wires the rating lookup service.
func NewService(baseURL, userAgent string, st store.Store, caches *cache.Caches) *Service {
	return &Service{
		client:    &http.Client{Timeout: requestTimeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		ratings:   st.Collection(store.CollectionRatings),
		fast:      caches.Ratings,
		now:       time.Now,
	}
}

// Lookup resolves a rating for a product name, optionally narrowed by
// producer. A missing rating is a normal absence (domain.ErrRatingNotFound)
// and is never cached, so a later lookup may succeed.
func (s *Service) Lookup(ctx context.Context, name, producer string) (*domain.ExternalRating, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	key := domain.RatingKey(name, producer)

	if rating, ok := s.fast.Get(key); ok {
		return rating, nil
	}
	if rating, err := s.durableGet(ctx, key); err == nil {
		s.fast.Set(key, rating)
		return rating, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, key, name, producer)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ExternalRating), nil
}

func (s *Service) durableGet(ctx context.Context, key string) (*domain.ExternalRating, error) {
	doc, err := s.ratings.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	rating, err := store.Decode[domain.ExternalRating](*doc)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *Service) fetch(ctx context.Context, key, name, producer string) (*domain.ExternalRating, error) {
	query := name
	if producer != "" {
		query = producer + " " + name
	}
	searchURL := s.baseURL + fmt.Sprintf(searchPathFmt, url.QueryEscape(query))

	page, err := s.getDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	card := page.Find(".wine-card").First()
	if card.Length() == 0 {
		return nil, domain.ErrRatingNotFound
	}

	value, ok := parseRatingValue(card.Find(".average__number").First().Text())
	if !ok {
		return nil, domain.ErrRatingNotFound
	}

	sourceURL := searchURL
	if href, exists := card.Find("a").First().Attr("href"); exists {
		sourceURL = s.absoluteURL(href)
	}

	rating := &domain.ExternalRating{
		Key:         key,
		Name:        strings.TrimSpace(card.Find(".wine-card__name").First().Text()),
		Producer:    producer,
		Rating:      value,
		RatingCount: parseRatingCount(card.Find(".average__stars .text-micro, .rating-count").First().Text()),
		SourceURL:   sourceURL,
		FetchedAt:   s.now(),
	}
	if rating.Name == "" {
		rating.Name = name
	}

	if err := s.persist(ctx, rating); err != nil {
		logger.FromContext(ctx).Warn("persisting rating failed", "key", key, "error", err)
	}
	s.fast.Set(key, rating)
	return rating, nil
}

// LookupURL resolves a rating directly from a product page URL, bypassing the
// site search.
func (s *Service) LookupURL(ctx context.Context, pageURL string) (*domain.ExternalRating, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || !parsed.IsAbs() {
		return nil, fmt.Errorf("%w: url must be absolute", domain.ErrInvalidInput)
	}

	page, err := s.getDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	value, ok := parseRatingValue(page.Find(".average__number").First().Text())
	if !ok {
		return nil, domain.ErrRatingNotFound
	}

	name := strings.TrimSpace(page.Find("h1").First().Text())
	rating := &domain.ExternalRating{
		Key:         domain.RatingKey(name, ""),
		Name:        name,
		Rating:      value,
		RatingCount: parseRatingCount(page.Find(".average__stars .text-micro, .rating-count").First().Text()),
		SourceURL:   pageURL,
		FetchedAt:   s.now(),
	}

	if rating.Name != "" {
		if err := s.persist(ctx, rating); err != nil {
			logger.FromContext(ctx).Warn("persisting rating failed", "key", rating.Key, "error", err)
		}
		s.fast.Set(rating.Key, rating)
	}
	return rating, nil
}

func (s *Service) persist(ctx context.Context, rating *domain.ExternalRating) error {
	doc, err := store.NewDocument(rating.Key, rating)
	if err != nil {
		return err
	}
	return s.ratings.Put(ctx, doc)
}

func (s *Service) getDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept-Language", "fi-FI,fi;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rating page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rating site returned status %d", resp.StatusCode)
	}
	page, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rating page: %w", err)
	}
	return page, nil
}

func (s *Service) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return s.baseURL + href
}

// parseRatingValue handles both dot and comma decimals ("4.2" / "4,2").
func parseRatingValue(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseRatingCount extracts the digits from strings like "1 234 arvostelua".
func parseRatingCount(text string) int {
	n := 0
	seen := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			seen = true
		}
	}
	if !seen {
		return 0
	}
	return n
}
