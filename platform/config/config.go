// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// MewsConfig provides settings for the Mews Connector API client.
type MewsConfig interface {
	GetMewsBaseURL() string
	GetMewsClientToken() string
	GetMewsAccessToken() string
	GetMewsRequestsPerSecond() float64
}

// SyncConfig provides settings for the assignment sync job.
type SyncConfig interface {
	GetReservableServiceIDs() []string
	GetLinenServiceIDs() []string
	GetLinenProductIDs() []string
	GetSyncDaysBack() int
	GetSyncDaysAhead() int
	GetHotelTimezone() string
	IsSyncDryRun() bool
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSyncInterval() time.Duration
}

// ImagesConfig provides settings for the unit image proxy.
type ImagesConfig interface {
	GetImageBaseURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	JWTSecret            string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	MewsBaseURL          string
	MewsClientToken      string
	MewsAccessToken      string
	MewsRequestsPerSec   float64
	ReservableServiceIDs []string
	LinenServiceIDs      []string
	LinenProductIDs      []string
	SyncDaysBack         int
	SyncDaysAhead        int
	SyncInterval         time.Duration
	HotelTimezone        string
	SyncDryRun           bool
	ImageBaseURL         string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTSecret() string { return c.JWTSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// MewsConfig implementation
func (c *Config) GetMewsBaseURL() string            { return c.MewsBaseURL }
func (c *Config) GetMewsClientToken() string        { return c.MewsClientToken }
func (c *Config) GetMewsAccessToken() string        { return c.MewsAccessToken }
func (c *Config) GetMewsRequestsPerSecond() float64 { return c.MewsRequestsPerSec }

// SyncConfig implementation
func (c *Config) GetReservableServiceIDs() []string { return c.ReservableServiceIDs }
func (c *Config) GetLinenServiceIDs() []string      { return c.LinenServiceIDs }
func (c *Config) GetLinenProductIDs() []string      { return c.LinenProductIDs }
func (c *Config) GetSyncDaysBack() int              { return c.SyncDaysBack }
func (c *Config) GetSyncDaysAhead() int             { return c.SyncDaysAhead }
func (c *Config) GetHotelTimezone() string          { return c.HotelTimezone }
func (c *Config) IsSyncDryRun() bool                { return c.SyncDryRun }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string            { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool      { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string      { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int       { return c.AsynqConcurrency }
func (c *Config) GetSyncInterval() time.Duration { return c.SyncInterval }

// ImagesConfig implementation
func (c *Config) GetImageBaseURL() string { return c.ImageBaseURL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8100"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		MewsBaseURL:          getEnv("MEWS_BASE_URL", "https://api.mews.com"),
		MewsClientToken:      getEnv("MEWS_CLIENT_TOKEN", ""),
		MewsAccessToken:      getEnv("MEWS_ACCESS_TOKEN", ""),
		MewsRequestsPerSec:   mustFloat(getEnv("MEWS_REQUESTS_PER_SECOND", "5")),
		ReservableServiceIDs: splitCSV(getEnv("MEWS_RESERVABLE_SERVICE_IDS", "")),
		LinenServiceIDs:      splitCSV(getEnv("MEWS_LINEN_SERVICE_IDS", "")),
		LinenProductIDs:      splitCSV(getEnv("MEWS_LINEN_PRODUCT_IDS", "")),
		SyncDaysBack:         mustInt(getEnv("SYNC_DAYS_BACK", "1")),
		SyncDaysAhead:        mustInt(getEnv("SYNC_DAYS_AHEAD", "30")),
		SyncInterval:         mustDuration(getEnv("SYNC_INTERVAL", "15m")),
		HotelTimezone:        getEnv("HOTEL_TIMEZONE", "Europe/Oslo"),
		SyncDryRun:           strings.EqualFold(getEnv("SYNC_DRY_RUN", "false"), "true"),
		ImageBaseURL:         getEnv("UNIT_IMAGE_BASE_URL", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MewsClientToken == "" || cfg.MewsAccessToken == "" {
		return nil, fmt.Errorf("MEWS_CLIENT_TOKEN and MEWS_ACCESS_TOKEN are required")
	}
	if len(cfg.ReservableServiceIDs) == 0 {
		return nil, fmt.Errorf("MEWS_RESERVABLE_SERVICE_IDS is required")
	}
	if cfg.SyncDaysBack < 0 || cfg.SyncDaysAhead < 0 {
		return nil, fmt.Errorf("SYNC_DAYS_BACK and SYNC_DAYS_AHEAD must be non-negative")
	}
	if _, err := time.LoadLocation(cfg.HotelTimezone); err != nil {
		return nil, fmt.Errorf("invalid HOTEL_TIMEZONE %q: %w", cfg.HotelTimezone, err)
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
