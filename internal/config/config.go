package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=sushi_pos port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	AppEnv      string
	HTTPPort    string
	DatabaseDSN string
	CORSOrigins string
	APIPrefix   string

	// AMQPURL empty disables order event publishing.
	AMQPURL string

	// StrictStatusTransitions rejects order status changes that skip the
	// pending → preparing → ready → completed flow.
	StrictStatusTransitions bool

	RateLimitRPS   float64
	RateLimitBurst int

	// DefaultAycePrice is stored on non-AYCE orders, and on AYCE orders
	// created without a price when the settings row cannot be read.
	DefaultAycePrice decimal.Decimal
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		HTTPPort:    getEnv("HTTP_PORT", "8000"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		APIPrefix:   "/" + strings.Trim(getEnv("API_PREFIX", "/api/v1"), "/"),
		AMQPURL:     getEnv("AMQP_URL", ""),
	}

	var err error
	if cfg.StrictStatusTransitions, err = strconv.ParseBool(getEnv("ORDER_STRICT_TRANSITIONS", "false")); err != nil {
		return nil, fmt.Errorf("ORDER_STRICT_TRANSITIONS must be a boolean: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", os.Getenv("RATE_LIMIT_RPS"))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20")); err != nil || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer, got %q", os.Getenv("RATE_LIMIT_BURST"))
	}
	if cfg.DefaultAycePrice, err = decimal.NewFromString(getEnv("DEFAULT_AYCE_PRICE", "25.00")); err != nil || cfg.DefaultAycePrice.IsNegative() {
		return nil, fmt.Errorf("DEFAULT_AYCE_PRICE must be a non-negative amount, got %q", os.Getenv("DEFAULT_AYCE_PRICE"))
	}

	return cfg, nil
}

// Warnings lists settings that are fine for development but not production.
func (c *Config) Warnings() []string {
	var w []string
	if c.DatabaseDSN == defaultDSN {
		w = append(w, "DATABASE_DSN is using the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		w = append(w, "CORS_ALLOWED_ORIGINS is using the default value, set your own domain for production")
	}
	return w
}

// AllowedOrigins returns CORSOrigins as a trimmed, comma-joined list.
func (c *Config) AllowedOrigins() string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
