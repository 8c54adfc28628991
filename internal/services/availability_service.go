package services

import (
	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// AvailabilityService manages the dated inventory of trips.
// Spots are reserved and released only by BookingRepository, inside the booking transaction.
type AvailabilityService struct {
	trips TripStore
	dates TripDateStore
}

// NewAvailabilityService creates an AvailabilityService
func NewAvailabilityService(trips TripStore, dates TripDateStore) *AvailabilityService {
	return &AvailabilityService{trips: trips, dates: dates}
}

// AddDates schedules new occurrences of a trip owned by the provider
func (s *AvailabilityService) AddDates(providerID, tripID uuid.UUID, req *models.AddDatesRequest) ([]models.TripDate, error) {
	trip, err := s.trips.GetTripByID(tripID)
	if err != nil {
		return nil, notFoundOr(err, "trip")
	}
	if trip.ProviderID != providerID {
		return nil, apperror.NotOwner()
	}

	dates, err := newTripDates(req.Dates, trip.MaxParticipants)
	if err != nil {
		return nil, err
	}
	for i := range dates {
		dates[i].TripID = trip.ID
	}

	if err := s.dates.AddDates(dates); err != nil {
		return nil, apperror.Unexpected(err)
	}
	return dates, nil
}

// ListDates returns every date of a trip in start order
func (s *AvailabilityService) ListDates(tripID uuid.UUID) ([]models.TripDate, error) {
	if _, err := s.trips.GetTripByID(tripID); err != nil {
		return nil, notFoundOr(err, "trip")
	}
	dates, err := s.dates.ListDates(tripID, false)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return dates, nil
}
