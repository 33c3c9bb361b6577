package main

import (
	"github.com/jmakela/bottlecat/internal/config"
	"github.com/jmakela/bottlecat/internal/logger"
)

// initLogger initializes the logger using centralized app configuration
func initLogger(cfg *config.Config) {
	// Source locations are only useful during development
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		AddSource:   addSource,
	})
}
