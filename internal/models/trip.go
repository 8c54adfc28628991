package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// TRIP STATUSES
// ============================================================================

// TripStatus is the listing state of a trip
type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusPending   TripStatus = "pending"
	TripStatusPublished TripStatus = "published"
	TripStatusPaused    TripStatus = "paused"
	TripStatusInactive  TripStatus = "inactive"
)

// Valid reports whether s is a known trip status
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusDraft, TripStatusPending, TripStatusPublished, TripStatusPaused, TripStatusInactive:
		return true
	}
	return false
}

// Bookable reports whether travelers may book the trip
func (s TripStatus) Bookable() bool {
	return s == TripStatusPublished
}

// ============================================================================
// TRIP
// ============================================================================

// CustomizationOption is an optional add-on priced per participant
type CustomizationOption struct {
	Name           string          `json:"name" binding:"required,max=100"`
	PricePerPerson decimal.Decimal `json:"price_per_person"`
}

// CustomizationOptions is stored as a JSONB array
type CustomizationOptions []CustomizationOption

// Value implements the driver.Valuer interface
func (o CustomizationOptions) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	bytes, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface
func (o *CustomizationOptions) Scan(value interface{}) error {
	if value == nil {
		*o = CustomizationOptions{}
		return nil
	}
	return json.Unmarshal(asBytes(value), o)
}

// Find returns the option with the given name
func (o CustomizationOptions) Find(name string) (CustomizationOption, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt, true
		}
	}
	return CustomizationOption{}, false
}

// Trip is a listed travel product offered by a provider
type Trip struct {
	ID                   uuid.UUID            `json:"id" db:"id"`
	ProviderID           uuid.UUID            `json:"provider_id" db:"provider_id"`
	Title                string               `json:"title" db:"title"`
	Description          string               `json:"description" db:"description"`
	Destination          string               `json:"destination" db:"destination"`
	DurationDays         int                  `json:"duration_days" db:"duration_days"`
	MaxParticipants      int                  `json:"max_participants" db:"max_participants"`
	BasePrice            decimal.Decimal      `json:"base_price" db:"base_price"`
	Included             StringArray          `json:"included" db:"included"`
	Excluded             StringArray          `json:"excluded" db:"excluded"`
	ActivityType         string               `json:"activity_type" db:"activity_type"`
	DifficultyLevel      string               `json:"difficulty_level" db:"difficulty_level"`
	CustomizationOptions CustomizationOptions `json:"customization_options" db:"customization_options"`
	Itinerary            JSONB                `json:"itinerary" db:"itinerary"`
	Status               TripStatus           `json:"status" db:"status"`
	Rating               decimal.Decimal      `json:"rating" db:"rating"`
	ReviewCount          int                  `json:"review_count" db:"review_count"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
}

// ProviderSummary is the public face of a provider shown with a trip
type ProviderSummary struct {
	ID            uuid.UUID     `json:"id" db:"provider_profile_id"`
	BusinessName  string        `json:"business_name" db:"provider_business_name"`
	Location      string        `json:"location" db:"provider_location"`
	FirstName     string        `json:"first_name" db:"provider_first_name"`
	LastName      string        `json:"last_name" db:"provider_last_name"`
	ApprovalState ApprovalState `json:"approval_state" db:"provider_approval_state"`
}

// TripDetail is a trip with its provider and bookable dates
type TripDetail struct {
	*Trip
	Provider ProviderSummary `json:"provider"`
	Dates    []TripDate      `json:"dates"`
}

// ProviderTrip is a trip in the provider's own listing
type ProviderTrip struct {
	Trip
	BookingCount int `json:"booking_count" db:"booking_count"`
}

// TripFilter narrows a catalog search; nil fields are ignored
type TripFilter struct {
	Destination  string
	ActivityType string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	ProviderID   *uuid.UUID
	Status       TripStatus
	StartDate    *time.Time
	EndDate      *time.Time
	Pagination
}

// TripList is a page of catalog results
type TripList struct {
	Trips      []Trip `json:"trips"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// ============================================================================
// REQUEST DTOs
// ============================================================================

// CreateTripRequest is the body of POST /trips
type CreateTripRequest struct {
	Title                string                `json:"title" binding:"required,max=200"`
	Description          string                `json:"description" binding:"required"`
	Destination          string                `json:"destination" binding:"required,max=200"`
	DurationDays         int                   `json:"duration_days" binding:"required,min=1"`
	MaxParticipants      int                   `json:"max_participants" binding:"required,min=1"`
	BasePrice            decimal.Decimal       `json:"base_price"`
	Included             []string              `json:"included" binding:"omitempty,dive,max=200"`
	Excluded             []string              `json:"excluded" binding:"omitempty,dive,max=200"`
	ActivityType         string                `json:"activity_type" binding:"omitempty,max=50"`
	DifficultyLevel      string                `json:"difficulty_level" binding:"omitempty,oneof=easy moderate challenging expert"`
	CustomizationOptions []CustomizationOption `json:"customization_options" binding:"omitempty,dive"`
	Itinerary            JSONB                 `json:"itinerary"`
	Dates                []DateRangeRequest    `json:"dates" binding:"omitempty,dive"`
}

// Validate checks the rules binding tags cannot express
func (r *CreateTripRequest) Validate() error {
	if r.BasePrice.IsNegative() {
		return errors.New("base_price cannot be negative")
	}
	return validateCustomizations(r.CustomizationOptions)
}

// UpdateTripRequest is the body of PUT /trips/:id; only non-nil fields are applied
type UpdateTripRequest struct {
	Title                *string                `json:"title" binding:"omitempty,min=1,max=200"`
	Description          *string                `json:"description" binding:"omitempty,min=1"`
	Destination          *string                `json:"destination" binding:"omitempty,min=1,max=200"`
	DurationDays         *int                   `json:"duration_days" binding:"omitempty,min=1"`
	MaxParticipants      *int                   `json:"max_participants" binding:"omitempty,min=1"`
	BasePrice            *decimal.Decimal       `json:"base_price"`
	Included             []string               `json:"included" binding:"omitempty,dive,max=200"`
	Excluded             []string               `json:"excluded" binding:"omitempty,dive,max=200"`
	ActivityType         *string                `json:"activity_type" binding:"omitempty,max=50"`
	DifficultyLevel      *string                `json:"difficulty_level" binding:"omitempty,oneof=easy moderate challenging expert"`
	CustomizationOptions *[]CustomizationOption `json:"customization_options"`
	Itinerary            JSONB                  `json:"itinerary"`
	Status               *TripStatus            `json:"status"`
}

// Validate checks the rules binding tags cannot express
func (r *UpdateTripRequest) Validate() error {
	if r.BasePrice != nil && r.BasePrice.IsNegative() {
		return errors.New("base_price cannot be negative")
	}
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("status must be one of draft, pending, published, paused, inactive")
	}
	if r.CustomizationOptions != nil {
		return validateCustomizations(*r.CustomizationOptions)
	}
	return nil
}

// Apply copies the provided fields onto trip
func (r *UpdateTripRequest) Apply(trip *Trip) {
	if r.Title != nil {
		trip.Title = *r.Title
	}
	if r.Description != nil {
		trip.Description = *r.Description
	}
	if r.Destination != nil {
		trip.Destination = *r.Destination
	}
	if r.DurationDays != nil {
		trip.DurationDays = *r.DurationDays
	}
	if r.MaxParticipants != nil {
		trip.MaxParticipants = *r.MaxParticipants
	}
	if r.BasePrice != nil {
		trip.BasePrice = *r.BasePrice
	}
	if r.Included != nil {
		trip.Included = r.Included
	}
	if r.Excluded != nil {
		trip.Excluded = r.Excluded
	}
	if r.ActivityType != nil {
		trip.ActivityType = *r.ActivityType
	}
	if r.DifficultyLevel != nil {
		trip.DifficultyLevel = *r.DifficultyLevel
	}
	if r.CustomizationOptions != nil {
		trip.CustomizationOptions = *r.CustomizationOptions
	}
	if r.Itinerary != nil {
		trip.Itinerary = r.Itinerary
	}
	if r.Status != nil {
		trip.Status = *r.Status
	}
}

func validateCustomizations(options []CustomizationOption) error {
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt.PricePerPerson.IsNegative() {
			return errors.New("customization price_per_person cannot be negative")
		}
		if seen[opt.Name] {
			return errors.New("customization names must be unique")
		}
		seen[opt.Name] = true
	}
	return nil
}
