package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_PORT", "DATABASE_DSN", "CORS_ALLOWED_ORIGINS", "API_PREFIX",
		"AMQP_URL", "ORDER_STRICT_TRANSITIONS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "DEFAULT_AYCE_PRICE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "", cfg.AMQPURL)
	assert.False(t, cfg.StrictStatusTransitions)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, "25.00", cfg.DefaultAycePrice.StringFixed(2))
	assert.Len(t, cfg.Warnings(), 2)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_DSN", "host=db dbname=pos")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://pos.example.com , https://admin.example.com")
	t.Setenv("API_PREFIX", "api/v2/")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("DEFAULT_AYCE_PRICE", "29.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "/api/v2", cfg.APIPrefix)
	assert.True(t, cfg.StrictStatusTransitions)
	assert.Equal(t, "29.50", cfg.DefaultAycePrice.StringFixed(2))
	assert.Equal(t, "https://pos.example.com,https://admin.example.com", cfg.AllowedOrigins())
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"ORDER_STRICT_TRANSITIONS": "sometimes",
		"RATE_LIMIT_RPS":           "-1",
		"RATE_LIMIT_BURST":         "lots",
		"DEFAULT_AYCE_PRICE":       "-3",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
