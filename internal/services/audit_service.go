package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/internal/utils"
)

// Auditor records security and booking events
type Auditor interface {
	LogRegistration(userID uuid.UUID, email string, role models.Role, meta RequestMeta) error
	LogLogin(userID *uuid.UUID, email string, success bool, reason string, meta RequestMeta) error
	LogRateLimitViolation(email, limitType string, retryAfter time.Time, meta RequestMeta) error
	LogBookingEvent(userID, bookingID uuid.UUID, action string, details map[string]interface{}, meta RequestMeta) error
}

// AuditService handles audit logging for security and booking events
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID             // nil for pre-authentication events
	Action     string                 // e.g. "register", "login_failed", "booking_created"
	EntityType string                 // e.g. "user", "booking", "rate_limit"
	EntityID   *uuid.UUID             // can be nil
	IPAddress  string                 // client IP address
	UserAgent  string                 // client user agent
	Details    map[string]interface{} // stored as JSONB
}

// LogRegistration logs a new account
func (s *AuditService) LogRegistration(userID uuid.UUID, email string, role models.Role, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "register",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details: map[string]interface{}{
			"email":       email,
			"role":        role,
			"device_info": utils.ParseUserAgent(meta.UserAgent),
		},
	})
}

// LogLogin logs a login attempt; userID is nil when the email is unknown
func (s *AuditService) LogLogin(userID *uuid.UUID, email string, success bool, reason string, meta RequestMeta) error {
	details := map[string]interface{}{
		"email":       email,
		"success":     success,
		"device_info": utils.ParseUserAgent(meta.UserAgent),
	}
	if !success && reason != "" {
		details["failure_reason"] = reason
	}

	action := "login_failed"
	if success {
		action = "login"
	}

	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		EntityID:   userID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    details,
	})
}

// LogRateLimitViolation logs a throttled login
func (s *AuditService) LogRateLimitViolation(email, limitType string, retryAfter time.Time, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		Action:     "rate_limit_violation",
		EntityType: "rate_limit",
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details: map[string]interface{}{
			"email":       email,
			"limit_type":  limitType, // "email" or "ip"
			"retry_after": retryAfter,
			"device_info": utils.ParseUserAgent(meta.UserAgent),
		},
	})
}

// LogBookingEvent logs a booking lifecycle change made by userID
func (s *AuditService) LogBookingEvent(userID, bookingID uuid.UUID, action string, details map[string]interface{}, meta RequestMeta) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "booking",
		EntityID:   &bookingID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    details,
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		models.JSONB(event.Details),
	)

	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// NoopAuditor discards events; used when audit logging is disabled
type NoopAuditor struct{}

func (NoopAuditor) LogRegistration(uuid.UUID, string, models.Role, RequestMeta) error { return nil }

func (NoopAuditor) LogLogin(*uuid.UUID, string, bool, string, RequestMeta) error { return nil }

func (NoopAuditor) LogRateLimitViolation(string, string, time.Time, RequestMeta) error { return nil }

func (NoopAuditor) LogBookingEvent(uuid.UUID, uuid.UUID, string, map[string]interface{}, RequestMeta) error {
	return nil
}
