package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmakela/bottlecat/internal/bootstrap"
	"github.com/jmakela/bottlecat/internal/catalog"
	"github.com/jmakela/bottlecat/internal/database"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/metrics"
	"github.com/jmakela/bottlecat/internal/ratings"
	"github.com/jmakela/bottlecat/internal/search"
)

// Options wires the server's dependencies.
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string

	Pool    database.Pool
	Catalog *catalog.Service
	Search  *search.Engine
	Ratings *ratings.Service
	Loader  *bootstrap.Loader
}

// Server is the HTTP tool surface over the catalog.
type Server struct {
	httpServer *http.Server

	pool    database.Pool
	catalog *catalog.Service
	engine  *search.Engine
	ratings *ratings.Service
	loader  *bootstrap.Loader
}

// New creates the server and its route tree.
func New(opts Options) *Server {
	s := &Server{
		pool:    opts.Pool,
		catalog: opts.Catalog,
		engine:  opts.Search,
		ratings: opts.Ratings,
		loader:  opts.Loader,
	}

	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(maxRequestBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Every data endpoint runs behind the ensure-data check.
		r.Use(s.ensureDataMiddleware)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleSearchItems)
			r.Get("/{id}", s.handleGetItem)
			r.Get("/{id}/availability", s.handleGetAvailability)
			r.Get("/{id}/rating", s.handleGetItemRating)
		})

		r.Get("/outlets", s.handleListOutlets)
		r.Get("/rating", s.handleGetRating)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/items", s.handleSyncItems)
			r.Post("/outlets", s.handleSyncOutlets)
			r.Get("/runs", s.handleListSyncRuns)
		})
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the server.
func (s *Server) Start() error {
	slog.Default().Info("server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ensureDataMiddleware runs the one-time bootstrap check before any data
// endpoint touches the store.
func (s *Server) ensureDataMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.loader != nil {
			if err := s.loader.EnsureData(r.Context()); err != nil {
				logger.FromContext(r.Context()).Error("ensure-data failed", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health and metrics probes would drown out everything else.
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent())

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}
