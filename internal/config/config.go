package config

import (
	"fmt"
	"ftareview/internal/engine"
	"os"
	"strings"
	"time"
)

// Config holds process settings read from the environment
type Config struct {
	MongoURI           string
	MongoDB            string
	RedisAddr          string
	HTTPPort           string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins string
	CORSAllowedMethods string
	CORSAllowedHeaders string
	CacheTTL           time.Duration
	SectionOrder       engine.SectionOrder
	CatalogFile        string // When set, the catalog is read from this YAML file instead of MongoDB
	ShutdownTimeout    time.Duration
}

// Load reads the configuration, applying defaults for unset variables
func Load() (*Config, error) {
	cfg := &Config{
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "ftareview"),
		RedisAddr:          strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		HTTPPort:           getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
		CORSAllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization, X-Request-ID"),
		CatalogFile:        os.Getenv("CATALOG_FILE"),
	}

	var err error
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SectionOrder, err = engine.ParseSectionOrder(getEnv("SECTION_ORDER", string(engine.OrderByHoursDesc))); err != nil {
		return nil, fmt.Errorf("SECTION_ORDER: %w", err)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return nil, fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, val)
	}
	return d, nil
}
