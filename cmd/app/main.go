package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmakela/bottlecat/data"
	"github.com/jmakela/bottlecat/internal/bootstrap"
	"github.com/jmakela/bottlecat/internal/cache"
	"github.com/jmakela/bottlecat/internal/catalog"
	"github.com/jmakela/bottlecat/internal/config"
	"github.com/jmakela/bottlecat/internal/database"
	"github.com/jmakela/bottlecat/internal/pricelist"
	"github.com/jmakela/bottlecat/internal/ratings"
	"github.com/jmakela/bottlecat/internal/scheduler"
	"github.com/jmakela/bottlecat/internal/scraper"
	"github.com/jmakela/bottlecat/internal/search"
	"github.com/jmakela/bottlecat/internal/server"
	"github.com/jmakela/bottlecat/internal/store"
	"github.com/jmakela/bottlecat/internal/throttle"
	"github.com/jmakela/bottlecat/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)

	pool, err := database.NewPool(cfg.GetDBConnString(),
		database.DefaultMaxConnections,
		database.DefaultMaxIdleTime,
		database.DefaultMaxLifetime)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	st := store.NewPostgresStore(pool)
	caches := cache.NewCaches()

	driver, err := scraper.NewChromeDriver(scraper.DriverConfig{
		Headless:        cfg.HeadlessBrowser,
		UserAgent:       cfg.BrowserUserAgent,
		NavigateTimeout: cfg.NavigateTimeout,
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer driver.Close()

	session := scraper.NewSession(driver,
		throttle.NewLimiter(cfg.ScrapeInterval, cfg.ScrapeJitter),
		throttle.NewBackoff(time.Second, 2.0, 30*time.Second),
		cfg.SiteBaseURL)
	siteScraper := scraper.New(session)

	downloader, err := pricelist.NewDownloader(cfg.SiteBaseURL, cfg.PriceListURL, cfg.BrowserUserAgent)
	if err != nil {
		return fmt.Errorf("create price list downloader: %w", err)
	}

	catalogSvc := catalog.NewService(st, caches, pricelist.NewSource(downloader), siteScraper)

	srv := server.New(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: nil,
		Pool:           pool,
		Catalog:        catalogSvc,
		Search:         search.New(st, caches, cfg.TextFetchBound),
		Ratings:        ratings.NewService(cfg.RatingSiteURL, cfg.BrowserUserAgent, st, caches),
		Loader:         bootstrap.New(st, catalogSvc, data.Seed),
	})

	// Periodic re-sync runs on a single worker so a slow price-list
	// download and an outlet crawl never overlap on the shared session.
	workerPool := worker.NewPool(1, 4)
	workerPool.Start()

	sched := scheduler.New(workerPool)
	sched.Schedule(cfg.ItemSyncInterval, worker.NewItemSyncJob(catalogSvc))
	sched.Schedule(cfg.OutletSyncInterval, worker.NewOutletSyncJob(catalogSvc))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sched.Stop()
		workerPool.Stop()
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{
		Server:    srv,
		Scheduler: sched,
		Workers:   workerPool,
		Session:   session,
	})
	return nil
}
