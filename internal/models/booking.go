package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// BOOKING STATUSES
// ============================================================================

// BookingStatus is the lifecycle state of a booking.
// pending is the initial inquiry state awaiting the provider.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// PaymentStatus tracks payment of a booking
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
	BookingCancelled: {},
	BookingCompleted: {},
}

// Transitions each actor may request through the status endpoint.
// Completion is time-driven and never requested by a user.
var (
	providerTransitions = map[BookingStatus][]BookingStatus{
		BookingPending: {BookingConfirmed, BookingCancelled},
	}
	travelerTransitions = map[BookingStatus][]BookingStatus{
		BookingPending:   {BookingCancelled},
		BookingConfirmed: {BookingCancelled},
	}
)

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving to target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return contains(bookingTransitions[s], target)
}

// IsTerminal reports whether no further transitions are possible
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Active reports whether the booking still holds reserved spots
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// ProviderMayTransition reports whether a trip's provider may request from -> to
func ProviderMayTransition(from, to BookingStatus) bool {
	return contains(providerTransitions[from], to)
}

// TravelerMayTransition reports whether the booking's traveler may request from -> to
func TravelerMayTransition(from, to BookingStatus) bool {
	return contains(travelerTransitions[from], to)
}

func contains(statuses []BookingStatus, target BookingStatus) bool {
	for _, s := range statuses {
		if s == target {
			return true
		}
	}
	return false
}

// ============================================================================
// BOOKING
// ============================================================================

// Booking is a traveler's reservation against one trip date.
// CommissionAmount == round(TotalPrice * CommissionRate / 100, 2).
type Booking struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	BookingNumber      string          `json:"booking_number" db:"booking_number"`
	TravelerID         uuid.UUID       `json:"traveler_id" db:"traveler_id"`
	TripID             uuid.UUID       `json:"trip_id" db:"trip_id"`
	TripDateID         uuid.UUID       `json:"trip_date_id" db:"trip_date_id"`
	ParticipantCount   int             `json:"participant_count" db:"participant_count"`
	Customizations     StringArray     `json:"customizations" db:"customizations"`
	TotalPrice         decimal.Decimal `json:"total_price" db:"total_price"`
	CommissionRate     decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	CommissionAmount   decimal.Decimal `json:"commission_amount" db:"commission_amount"`
	PaymentStatus      PaymentStatus   `json:"payment_status" db:"payment_status"`
	BookingStatus      BookingStatus   `json:"booking_status" db:"booking_status"`
	TravelerInfo       JSONB           `json:"traveler_info" db:"traveler_info"`
	SpecialRequests    string          `json:"special_requests" db:"special_requests"`
	ProviderResponse   string          `json:"provider_response" db:"provider_response"`
	CancellationReason string          `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// BookingDetail is a booking joined with the trip facts needed for display and authorization
type BookingDetail struct {
	Booking
	TripTitle     string    `json:"trip_title" db:"trip_title"`
	ProviderID    uuid.UUID `json:"provider_id" db:"provider_id"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	EndDate       time.Time `json:"end_date" db:"end_date"`
	TravelerEmail string    `json:"traveler_email" db:"traveler_email"`
	TravelerName  string    `json:"traveler_name" db:"traveler_name"`
}

// BookingFilter narrows a booking listing
type BookingFilter struct {
	Status BookingStatus
	Pagination
}

// BookingList is a page of bookings
type BookingList struct {
	Bookings   []BookingDetail `json:"bookings"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// ============================================================================
// REQUEST DTOs
// ============================================================================

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	TripID           uuid.UUID `json:"trip_id" binding:"required"`
	TripDateID       uuid.UUID `json:"trip_date_id" binding:"required"`
	ParticipantCount int       `json:"participant_count" binding:"required,min=1,max=100"`
	Customizations   []string  `json:"customizations" binding:"omitempty,max=20,dive,required"`
	TravelerInfo     JSONB     `json:"traveler_info"`
	SpecialRequests  string    `json:"special_requests" binding:"max=2000"`
}

// Validate checks the rules binding tags cannot express
func (r *CreateBookingRequest) Validate() error {
	if r.TripID == uuid.Nil || r.TripDateID == uuid.Nil {
		return errors.New("trip_id and trip_date_id are required")
	}
	seen := make(map[string]bool, len(r.Customizations))
	for _, name := range r.Customizations {
		if seen[name] {
			return errors.New("customizations cannot repeat")
		}
		seen[name] = true
	}
	return nil
}

// UpdateBookingStatusRequest is the body of PUT /bookings/:id/status
type UpdateBookingStatusRequest struct {
	Status  BookingStatus `json:"status" binding:"required"`
	Message string        `json:"message" binding:"max=2000"`
}

// CancelBookingRequest is the body of POST /bookings/:id/cancel
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}
