package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// Storage contracts the services depend on. The database package satisfies them;
// tests substitute in-memory implementations.

// UserStore persists accounts
type UserStore interface {
	CreateUser(user *models.User, profile *models.ProviderProfile) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uuid.UUID) (*models.User, error)
	GetUserByProviderID(providerID uuid.UUID) (*models.User, error)
}

// ProviderStore persists provider profiles and serves the public directory
type ProviderStore interface {
	GetByUserID(userID uuid.UUID) (*models.ProviderProfile, error)
	GetByID(id uuid.UUID) (*models.ProviderProfile, error)
	UpdateProfile(profile *models.ProviderProfile) error
	GetStats(providerID uuid.UUID) (*models.ProviderStats, error)
	GetPublicProfile(id uuid.UUID) (*models.PublicProvider, error)
	ListApproved(filter models.ProviderFilter) ([]models.PublicProvider, int, error)
}

// TripStore persists the trip catalog
type TripStore interface {
	CreateTrip(trip *models.Trip, dates []models.TripDate) error
	GetTripByID(id uuid.UUID) (*models.Trip, error)
	GetTripWithProvider(id uuid.UUID) (*models.Trip, *models.ProviderSummary, error)
	UpdateTrip(trip *models.Trip) error
	ListTrips(filter models.TripFilter) ([]models.Trip, int, error)
	ListProviderTrips(providerID uuid.UUID) ([]models.ProviderTrip, error)
}

// TripDateStore persists dated trip inventory
type TripDateStore interface {
	AddDates(dates []models.TripDate) error
	GetDateByID(id uuid.UUID) (*models.TripDate, error)
	ListDates(tripID uuid.UUID, onlyAvailable bool) ([]models.TripDate, error)
}

// BookingStore persists bookings; reservations happen inside its transactions
type BookingStore interface {
	BookingNumberExists(number string) (bool, error)
	CreateBooking(booking *models.Booking) error
	GetBookingByID(id uuid.UUID) (*models.BookingDetail, error)
	GetActiveForTraveler(id, travelerID uuid.UUID) (*models.BookingDetail, error)
	Cancel(id uuid.UUID, c database.Cancellation) error
	UpdateStatus(id uuid.UUID, from, to models.BookingStatus, response string) error
	ListByTraveler(travelerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error)
	ListByProvider(providerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error)
	CompleteFinished(now time.Time) ([]uuid.UUID, error)
	HasCompletedBooking(userID, tripID uuid.UUID) (bool, error)
}

// ReviewStore persists reviews and trip rating aggregates
type ReviewStore interface {
	CreateReview(review *models.Review) error
	ListByTrip(tripID uuid.UUID, page models.Pagination) ([]models.ReviewWithAuthor, int, error)
}

// RequestMeta carries client details recorded in the audit log
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
