package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tripmarket/marketplace-backend/internal/config"
	"github.com/tripmarket/marketplace-backend/internal/database"
)

// RateLimitService throttles failed logins per email and per client IP
type RateLimitService struct {
	db     database.DB
	config config.RateLimitConfig
	now    func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:     db,
		config: cfg,
		now:    time.Now,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "email" or "ip"
}

// Error returns the client-facing message
func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckLoginRateLimit checks if an email or IP has exceeded the failed-login limit
func (s *RateLimitService) CheckLoginRateLimit(email, ip string) error {
	if email != "" {
		count, last, err := s.getAttemptCount(email, "email")
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}
		if count >= s.config.MaxEmailAttempts {
			retryAfter := last.Add(s.config.Window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "email",
			}
		}
	}

	if ip != "" {
		count, last, err := s.getAttemptCount(ip, "ip")
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}
		if count >= s.config.MaxIPAttempts {
			retryAfter := last.Add(s.config.Window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// getAttemptCount gets the number of failed attempts within the window and the latest one
func (s *RateLimitService) getAttemptCount(identifier, identifierType string) (int, time.Time, error) {
	windowStart := s.now().Add(-s.config.Window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var last time.Time

	err := s.db.QueryRow(query, identifier, identifierType, windowStart).Scan(&count, &last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, err
	}

	return count, last, nil
}

// RecordFailedLogin records a failed login for both the email and the IP
func (s *RateLimitService) RecordFailedLogin(email, ip string) error {
	if email != "" {
		if err := s.recordAttempt(email, "email"); err != nil {
			return fmt.Errorf("failed to record email attempt: %w", err)
		}
	}
	if ip != "" {
		if err := s.recordAttempt(ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}
	return nil
}

func (s *RateLimitService) recordAttempt(identifier, identifierType string) error {
	query := `
		INSERT INTO login_attempts (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.Exec(query, identifier, identifierType)
	return err
}

// ResetLoginAttempts clears the failed attempts of an email after a successful login
func (s *RateLimitService) ResetLoginAttempts(email string) error {
	_, err := s.db.Exec(`DELETE FROM login_attempts WHERE identifier = $1 AND identifier_type = 'email'`, email)
	if err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// CleanupExpiredAttempts removes attempts older than the window
func (s *RateLimitService) CleanupExpiredAttempts() (int64, error) {
	cutoffTime := s.now().Add(-s.config.Window)

	result, err := s.db.Exec(`DELETE FROM login_attempts WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
