// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Shared secret for signing access tokens
	TokenSecret string `env:"TOKEN_SECRET,required"`

	// Cache (Redis). Optional: leave empty to run without the quote cache
	// and the account event stream.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// TTL for cached single-symbol quotes
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"10s"`

	// Directory for uploaded profile photos
	UploadDir string `env:"UPLOAD_DIR" envDefault:"static"`

	// Maximum accepted photo upload size in bytes (default 5MB)
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Upstream APIs
	MarketAPIURL       string `env:"MARKET_API_URL" envDefault:"https://api.binance.com"`
	WeatherAPIEndpoint string `env:"WEATHER_API_ENDPOINT" envDefault:"https://api.data.gov.sg/v1/environment/air-temperature"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis URL has been configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
