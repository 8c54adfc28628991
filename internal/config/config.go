package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Booking rules
	Booking BookingConfig

	// Outbound email configuration
	Mail MailConfig

	// Event bus configuration
	Events EventsConfig

	// Login rate limiting configuration
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error

	// Addresses or CIDRs of reverse proxies whose X-Forwarded-For / X-Real-IP headers are honoured
	TrustedProxies []string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost     int
	EnableAuditLog bool
}

// BookingConfig holds the business rules of the booking lifecycle
type BookingConfig struct {
	DefaultCommissionRate  decimal.Decimal
	CancellationWindow     time.Duration
	NumberMaxAttempts      int
	CompletionSchedule     string // cron spec with seconds
	AttemptCleanupSchedule string // cron spec with seconds
}

// MailConfig holds outbound email configuration
type MailConfig struct {
	Provider         string // "log", "smtp" or "mailersend"
	FromName         string
	FromAddress      string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	MailerSendAPIKey string
}

// EventsConfig holds event bus configuration
type EventsConfig struct {
	NATSURL string // empty disables publishing
}

// RateLimitConfig holds login throttling configuration
type RateLimitConfig struct {
	MaxEmailAttempts int
	MaxIPAttempts    int
	Window           time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),

			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: time.Duration(getEnvAsInt("JWT_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:     getEnvAsInt("BCRYPT_COST", 12),
			EnableAuditLog: getEnvAsBool("ENABLE_AUDIT_LOGGING", true),
		},
		Booking: BookingConfig{
			DefaultCommissionRate:  getEnvAsDecimal("DEFAULT_COMMISSION_RATE", decimal.RequireFromString("15.00")),
			CancellationWindow:     time.Duration(getEnvAsInt("CANCELLATION_WINDOW_HOURS", 48)) * time.Hour,
			NumberMaxAttempts:      getEnvAsInt("BOOKING_NUMBER_MAX_ATTEMPTS", 10),
			CompletionSchedule:     getEnv("BOOKING_COMPLETION_SCHEDULE", "0 0 * * * *"),
			AttemptCleanupSchedule: getEnv("LOGIN_ATTEMPT_CLEANUP_SCHEDULE", "0 30 3 * * *"),
		},
		Mail: MailConfig{
			Provider:         getEnv("MAIL_PROVIDER", "log"),
			FromName:         getEnv("MAIL_FROM_NAME", "Trip Marketplace"),
			FromAddress:      getEnv("MAIL_FROM_ADDRESS", "no-reply@tripmarket.local"),
			SMTPHost:         getEnv("SMTP_HOST", "localhost"),
			SMTPPort:         getEnvAsInt("SMTP_PORT", 1025),
			SMTPUsername:     getEnv("SMTP_USERNAME", ""),
			SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
			MailerSendAPIKey: getEnv("MAILERSEND_API_KEY", ""),
		},
		Events: EventsConfig{
			NATSURL: getEnv("NATS_URL", ""),
		},
		RateLimit: RateLimitConfig{
			MaxEmailAttempts: getEnvAsInt("LOGIN_MAX_EMAIL_ATTEMPTS", 5),
			MaxIPAttempts:    getEnvAsInt("LOGIN_MAX_IP_ATTEMPTS", 20),
			Window:           time.Duration(getEnvAsInt("LOGIN_RATE_WINDOW_MINUTES", 15)) * time.Minute,
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}

	rate := c.Booking.DefaultCommissionRate
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("DEFAULT_COMMISSION_RATE must be between 0 and 100, got %s", rate.String())
	}

	if c.Booking.CancellationWindow < 0 {
		return fmt.Errorf("CANCELLATION_WINDOW_HOURS cannot be negative")
	}

	if c.Booking.NumberMaxAttempts < 1 {
		return fmt.Errorf("BOOKING_NUMBER_MAX_ATTEMPTS must be at least 1")
	}

	switch c.Mail.Provider {
	case "log", "smtp":
	case "mailersend":
		if c.Mail.MailerSendAPIKey == "" {
			return fmt.Errorf("MAILERSEND_API_KEY is required for the mailersend provider")
		}
	default:
		return fmt.Errorf("invalid MAIL_PROVIDER: %s (must be 'log', 'smtp' or 'mailersend')", c.Mail.Provider)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		log.Printf("Invalid decimal value for %s, using default: %s", key, defaultValue.String())
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
