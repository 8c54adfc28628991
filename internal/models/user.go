package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role tags an account as one side of the marketplace
type Role string

const (
	RoleTraveler Role = "traveler"
	RoleProvider Role = "provider"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleTraveler || r == RoleProvider
}

// User represents a marketplace account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         Role      `json:"role" db:"role"`
	Verified     bool      `json:"verified" db:"verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the display name of the user
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ApprovalState is the admin review state of a provider
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
)

// ProviderProfile holds the business details of a provider account.
// A NULL commission rate means the platform default applies.
type ProviderProfile struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	UserID          uuid.UUID           `json:"user_id" db:"user_id"`
	BusinessName    string              `json:"business_name" db:"business_name"`
	Bio             string              `json:"bio" db:"bio"`
	Expertise       StringArray         `json:"expertise" db:"expertise"`
	Location        string              `json:"location" db:"location"`
	Languages       StringArray         `json:"languages" db:"languages"`
	YearsExperience int                 `json:"years_experience" db:"years_experience"`
	CommissionRate  decimal.NullDecimal `json:"commission_rate" db:"commission_rate"`
	ApprovalState   ApprovalState       `json:"approval_state" db:"approval_state"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// EffectiveCommissionRate returns the provider's own rate or the platform default
func (p *ProviderProfile) EffectiveCommissionRate(platformDefault decimal.Decimal) decimal.Decimal {
	if p.CommissionRate.Valid {
		return p.CommissionRate.Decimal
	}
	return platformDefault
}

// IsApproved reports whether the provider may publish trips
func (p *ProviderProfile) IsApproved() bool {
	return p.ApprovalState == ApprovalApproved
}

// ProviderStats summarises a provider's activity
type ProviderStats struct {
	TotalTrips      int             `json:"total_trips" db:"total_trips"`
	ActiveBookings  int             `json:"active_bookings" db:"active_bookings"`
	TotalRevenue    decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	TotalCommission decimal.Decimal `json:"total_commission" db:"total_commission"`
	AverageRating   decimal.Decimal `json:"average_rating" db:"average_rating"`
}

// PublicProvider is the traveler-facing view of an approved provider
type PublicProvider struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	FirstName       string      `json:"first_name" db:"first_name"`
	LastName        string      `json:"last_name" db:"last_name"`
	BusinessName    string      `json:"business_name" db:"business_name"`
	Bio             string      `json:"bio" db:"bio"`
	Expertise       StringArray `json:"expertise" db:"expertise"`
	Location        string      `json:"location" db:"location"`
	Languages       StringArray `json:"languages" db:"languages"`
	YearsExperience int         `json:"years_experience" db:"years_experience"`
	PublishedTrips  int         `json:"published_trips" db:"published_trips"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// ProviderFilter narrows the provider directory
type ProviderFilter struct {
	Location  string
	Expertise string
	Pagination
}

// ProviderList is a page of the provider directory
type ProviderList struct {
	Providers  []PublicProvider `json:"providers"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// ============================================================================
// REQUEST / RESPONSE DTOs
// ============================================================================

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Role      Role   `json:"role" binding:"required"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// CurrentUserResponse is returned by GET /auth/me
type CurrentUserResponse struct {
	*User
	ProviderProfile *ProviderProfile `json:"provider_profile,omitempty"`
}

// UpdateProviderProfileRequest carries the provider-editable profile fields
type UpdateProviderProfileRequest struct {
	BusinessName    *string  `json:"business_name" binding:"omitempty,max=200"`
	Bio             *string  `json:"bio" binding:"omitempty,max=5000"`
	Expertise       []string `json:"expertise" binding:"omitempty,max=20,dive,max=50"`
	Location        *string  `json:"location" binding:"omitempty,max=200"`
	Languages       []string `json:"languages" binding:"omitempty,max=20,dive,max=50"`
	YearsExperience *int     `json:"years_experience" binding:"omitempty,min=0,max=80"`
}
