package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tripmarket_test?sslmode=disable")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.True(t, cfg.Booking.DefaultCommissionRate.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 48*time.Hour, cfg.Booking.CancellationWindow)
	assert.Equal(t, 10, cfg.Booking.NumberMaxAttempts)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.Empty(t, cfg.Events.NATSURL)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEFAULT_COMMISSION_RATE", "12.50")
	t.Setenv("CANCELLATION_WINDOW_HOURS", "72")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)

	assert.Equal(t, "12.5", cfg.Booking.DefaultCommissionRate.String())
	assert.Equal(t, 72*time.Hour, cfg.Booking.CancellationWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANCELLATION_WINDOW_HOURS", "two days")
	t.Setenv("DEFAULT_COMMISSION_RATE", "fifteen")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.Booking.CancellationWindow)
	assert.Equal(t, "15", cfg.Booking.DefaultCommissionRate.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }, "DATABASE_URL"},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"commission above 100", func(c *Config) { c.Booking.DefaultCommissionRate = decimal.NewFromInt(101) }, "DEFAULT_COMMISSION_RATE"},
		{"negative commission", func(c *Config) { c.Booking.DefaultCommissionRate = decimal.NewFromInt(-1) }, "DEFAULT_COMMISSION_RATE"},
		{"zero attempts", func(c *Config) { c.Booking.NumberMaxAttempts = 0 }, "BOOKING_NUMBER_MAX_ATTEMPTS"},
		{"unknown mail provider", func(c *Config) { c.Mail.Provider = "pigeon" }, "MAIL_PROVIDER"},
		{"mailersend without key", func(c *Config) { c.Mail.Provider = "mailersend" }, "MAILERSEND_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
