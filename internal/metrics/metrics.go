package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// Scraper metrics
var (
	ScrapeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_operations_total",
			Help: "Total scraper operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Scraper operation duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"operation"},
	)

	SessionReestablishments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_session_reestablishments_total",
			Help: "Times the browsing session was re-established after repeated failures",
		},
	)

	BotChallengesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_bot_challenges_total",
			Help: "Bot verification challenge pages encountered",
		},
	)
)

// Sync metrics
var (
	SyncRowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_rows_processed_total",
			Help: "Price list rows processed by sync runs",
		},
		[]string{"kind", "result"}, // result: added | updated | invalid
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Completed sync runs by kind and status",
		},
		[]string{"kind", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "End-to-end sync duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)
)

// Cache metrics
var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Fast-tier cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Fast-tier cache misses by cache name",
		},
		[]string{"cache"},
	)
)

// Search metrics
var (
	SearchesPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searches_performed_total",
			Help: "Catalog searches by query mode",
		},
		[]string{"mode"}, // structured | fulltext
	)
)
