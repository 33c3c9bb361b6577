package bootstrap

import (
	"context"
	"log/slog"
)

// Stopper is anything shut down by waiting, with no deadline of its own.
type Stopper interface {
	Stop()
}

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server    interface{ Stop(context.Context) error }
	Scheduler Stopper
	Workers   Stopper
	Session   interface{ Close() error }
}

// GracefulShutdown stops the application components in dependency order:
//  1. HTTP server (stop accepting new requests)
//  2. Scheduler (stop enqueueing new sync jobs)
//  3. Worker pool (drain in-flight jobs)
//  4. Scraper session (release the browser)
//
// Errors during shutdown are logged but do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info("shutting down")

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error("server forced shutdown", "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.Workers != nil {
		components.Workers.Stop()
	}

	if components.Session != nil {
		if err := components.Session.Close(); err != nil {
			slog.Error("scraper session close failed", "error", err)
		}
	}

	slog.Info("shutdown complete")
}
