// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, quota limits, session backends, and parser behavior.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session backend names accepted by SESSION_BACKEND.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Header-detection strategy names accepted by HEADER_STYLE.
// "digit" treats any line whose first rune is an ASCII digit as a candidate
// header; "ordinal" requires a literal "1".."5" prefix.
const (
	HeaderStyleDigit   = "digit"
	HeaderStyleOrdinal = "ordinal"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// OpenAI Configuration
	OpenAIAPIKey  string
	OpenAIModel   string // default: gpt-3.5-turbo
	OpenAIBaseURL string // optional override for compatible providers

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Observability
	MetricsUsername     string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword     string // Password for /metrics Basic Auth (empty = no auth)
	BetterstackToken    string // Better Stack log source token (empty = stdout only)
	BetterstackEndpoint string // Better Stack ingesting endpoint
	SentryToken         string // Better Stack Errors token (empty = disabled)
	SentryHost          string // Better Stack Errors ingesting host
	Environment         string // deployment environment name (default: "production")

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// DailyQuota is the per-user daily cap on fulfilled requests (0 = disabled).
	DailyQuota int

	// QuotaLocation is the time zone used for the calendar-day boundary.
	QuotaLocation *time.Location

	// SessionBackend selects the session store implementation ("memory" or "redis").
	SessionBackend string
	// SessionTTL expires pending sessions after inactivity (0 = never).
	SessionTTL time.Duration
	// RedisAddr and RedisPassword configure the redis backend.
	RedisAddr     string
	RedisPassword string

	// HeaderStyle selects the suggestion parser's header-detection strategy.
	HeaderStyle string

	// SlowResponseThreshold appends a delay apology when a completion call
	// takes longer than this.
	SlowResponseThreshold time.Duration

	// WebhookWorkers bounds concurrent webhook event processing.
	WebhookWorkers int
	// MaxEventsPerWebhook caps events accepted per webhook delivery.
	MaxEventsPerWebhook int
	// MinReplyTokenLength rejects malformed reply tokens (default: 10).
	MinReplyTokenLength int
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	quotaLoc, err := time.LoadLocation(getEnv("QUOTA_TIMEZONE", "Asia/Tokyo"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTA_TIMEZONE: %w", err)
	}

	cfg := &Config{
		// LINE Bot Configuration
		LineChannelToken:  getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),

		// OpenAI Configuration
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		// Server Configuration
		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Observability
		MetricsUsername:     getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword:     getEnv("METRICS_PASSWORD", ""),
		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", "https://in.logs.betterstack.com"),
		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", "errors.betterstack.com"),
		Environment:         getEnv("ENVIRONMENT", "production"),

		// Bot Configuration
		Bot: BotConfig{
			DailyQuota:            getIntEnv("DAILY_QUOTA", 5),
			QuotaLocation:         quotaLoc,
			SessionBackend:        getEnv("SESSION_BACKEND", SessionBackendMemory),
			SessionTTL:            getDurationEnv("SESSION_TTL", 30*time.Minute),
			RedisAddr:             getEnv("REDIS_ADDR", ""),
			RedisPassword:         getEnv("REDIS_PASSWORD", ""),
			HeaderStyle:           getEnv("HEADER_STYLE", HeaderStyleDigit),
			SlowResponseThreshold: getDurationEnv("SLOW_RESPONSE_THRESHOLD", 10*time.Second),
			WebhookWorkers:        getIntEnv("WEBHOOK_WORKERS", 8),
			MaxEventsPerWebhook:   getIntEnv("MAX_EVENTS_PER_WEBHOOK", 100),
			MinReplyTokenLength:   getIntEnv("MIN_REPLY_TOKEN_LENGTH", 10),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is required"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks bot-specific configuration values.
func (c *BotConfig) Validate() error {
	var errs []error

	if c.DailyQuota < 0 {
		errs = append(errs, fmt.Errorf("DAILY_QUOTA cannot be negative, got %d", c.DailyQuota))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL cannot be negative, got %v", c.SessionTTL))
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required with SESSION_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}
	switch c.HeaderStyle {
	case HeaderStyleDigit, HeaderStyleOrdinal:
	default:
		errs = append(errs, fmt.Errorf("unknown HEADER_STYLE %q", c.HeaderStyle))
	}
	if c.WebhookWorkers <= 0 {
		errs = append(errs, fmt.Errorf("WEBHOOK_WORKERS must be positive, got %d", c.WebhookWorkers))
	}
	if c.MaxEventsPerWebhook <= 0 {
		errs = append(errs, fmt.Errorf("MAX_EVENTS_PER_WEBHOOK must be positive, got %d", c.MaxEventsPerWebhook))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
