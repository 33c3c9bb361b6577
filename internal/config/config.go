package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port        int
	APIKey      string
	LogLevel    string
	LogFormat   string
	ServiceName string
	Environment string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// External site.
	SiteBaseURL      string
	PriceListURL     string
	RatingSiteURL    string
	ScrapeInterval   time.Duration // minimum gap between scraper requests
	ScrapeJitter     time.Duration // random extra delay on top of the interval
	NavigateTimeout  time.Duration
	HeadlessBrowser  bool
	BrowserUserAgent string

	// Periodic re-sync; zero disables the scheduler.
	ItemSyncInterval   time.Duration
	OutletSyncInterval time.Duration

	// Search.
	TextFetchBound int // store fetch bound for free-text queries
}

// Load loads the configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      getEnv("API_KEY", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		ServiceName: getEnv("SERVICE_NAME", "bottlecat"),
		Environment: getEnv("ENVIRONMENT", "dev"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "bottlecat"),

		SiteBaseURL:      getEnv("SITE_BASE_URL", "https://www.alko.fi"),
		PriceListURL:     getEnv("PRICE_LIST_URL", "https://www.alko.fi/INTERSHOP/static/WFS/Alko-OnlineShop-Site/-/Alko-OnlineShop/fi_FI/Alkon%20Hinnasto%20Tekstitiedostona/alkon-hinnasto-tekstitiedostona.xlsx"),
		RatingSiteURL:    getEnv("RATING_SITE_URL", "https://www.vivino.com"),
		BrowserUserAgent: getEnv("BROWSER_USER_AGENT", defaultUserAgent),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.TextFetchBound, err = getEnvInt("SEARCH_TEXT_FETCH_BOUND", 10000); err != nil {
		return nil, err
	}
	if cfg.ScrapeInterval, err = getEnvDuration("SCRAPE_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScrapeJitter, err = getEnvDuration("SCRAPE_JITTER", 750*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.NavigateTimeout, err = getEnvDuration("NAVIGATE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ItemSyncInterval, err = getEnvDuration("ITEM_SYNC_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.OutletSyncInterval, err = getEnvDuration("OUTLET_SYNC_INTERVAL", 0); err != nil {
		return nil, err
	}
	cfg.HeadlessBrowser = getEnv("HEADLESS_BROWSER", "true") != "false"

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// GetDBConnString returns the PostgreSQL connection string.
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
