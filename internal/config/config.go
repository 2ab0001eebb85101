// Package config provides configuration loading from environment variables.
// #IMPLEMENTATION_DECISION: Using envconfig for type-safe environment variable parsing
// #CODE_ASSUMPTION: All secrets provided via environment variables (no secret manager integration)
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load
const EnvPrefix = "SURVEYPULSE"

// Config holds all application configuration loaded from environment variables.
// #INTEGRATION_POINT: All services depend on this configuration
type Config struct {
	// Database configuration
	DatabaseURI  string `envconfig:"DATABASE_URI" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"surveypulse"`

	// Redis configuration; an empty address keeps the cache in memory only
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Analytics engine configuration
	CacheTTL             time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	RefreshWindowDays    int           `envconfig:"REFRESH_WINDOW_DAYS" default:"30"`
	RefreshConcurrency   int           `envconfig:"REFRESH_CONCURRENCY" default:"4"`
	DefaultGranularities []string      `envconfig:"DEFAULT_GRANULARITIES" default:"day,week,month"`

	// JWT configuration; the private key is only needed to mint development tokens
	JWTPublicKeyPath  string        `envconfig:"JWT_PUBLIC_KEY_PATH" required:"true"`
	JWTPrivateKeyPath string        `envconfig:"JWT_PRIVATE_KEY_PATH"`
	JWTIssuer         string        `envconfig:"JWT_ISSUER" default:"surveypulse"`
	AccessTokenExpiry time.Duration `envconfig:"ACCESS_TOKEN_EXPIRY" default:"1h"`

	// Server configuration
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// CORS configuration
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

var (
	instance *Config
	once     sync.Once
	errInit  error
)

// Load loads configuration from environment variables.
// #IMPLEMENTATION_DECISION: Singleton pattern ensures config is loaded once
func Load() (*Config, error) {
	once.Do(func() {
		instance, errInit = Parse()
	})

	return instance, errInit
}

// Parse reads and validates the configuration without caching it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and that referenced key files exist
func (c *Config) Validate() error {
	if c.RefreshWindowDays < 1 {
		return fmt.Errorf("REFRESH_WINDOW_DAYS must be at least 1, got %d", c.RefreshWindowDays)
	}
	if c.RefreshConcurrency < 1 {
		return fmt.Errorf("REFRESH_CONCURRENCY must be at least 1, got %d", c.RefreshConcurrency)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if len(c.DefaultGranularities) == 0 {
		return fmt.Errorf("DEFAULT_GRANULARITIES must not be empty")
	}

	// Validate required file paths exist
	if _, err := os.Stat(c.JWTPublicKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("JWT public key file not found: %s", c.JWTPublicKeyPath)
	}
	if c.JWTPrivateKeyPath != "" {
		if _, err := os.Stat(c.JWTPrivateKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("JWT private key file not found: %s", c.JWTPrivateKeyPath)
		}
	}
	return nil
}

// RefreshWindow returns the rolling refresh window as a duration
func (c *Config) RefreshWindow() time.Duration {
	return time.Duration(c.RefreshWindowDays) * 24 * time.Hour
}

// UsesRedis returns true if a shared Redis cache is configured
func (c *Config) UsesRedis() bool {
	return c.RedisAddr != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
