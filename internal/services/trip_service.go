package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// TripService manages the trip catalog
type TripService struct {
	trips     TripStore
	dates     TripDateStore
	providers ProviderStore
}

// NewTripService creates a TripService
func NewTripService(trips TripStore, dates TripDateStore, providers ProviderStore) *TripService {
	return &TripService{
		trips:     trips,
		dates:     dates,
		providers: providers,
	}
}

// CreateTrip lists a new draft trip for the provider, with optional initial dates
func (s *TripService) CreateTrip(providerID uuid.UUID, req *models.CreateTripRequest) (*models.TripDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation("INVALID_TRIP", err.Error())
	}
	if req.DurationDays < 1 || req.MaxParticipants < 1 {
		return nil, apperror.Validation("INVALID_TRIP", "duration_days and max_participants must be positive")
	}

	trip := &models.Trip{
		ProviderID:           providerID,
		Title:                req.Title,
		Description:          req.Description,
		Destination:          req.Destination,
		DurationDays:         req.DurationDays,
		MaxParticipants:      req.MaxParticipants,
		BasePrice:            req.BasePrice,
		Included:             req.Included,
		Excluded:             req.Excluded,
		ActivityType:         req.ActivityType,
		DifficultyLevel:      req.DifficultyLevel,
		CustomizationOptions: req.CustomizationOptions,
		Itinerary:            req.Itinerary,
		Status:               models.TripStatusDraft,
	}

	dates, err := newTripDates(req.Dates, trip.MaxParticipants)
	if err != nil {
		return nil, err
	}

	if err := s.trips.CreateTrip(trip, dates); err != nil {
		return nil, apperror.Unexpected(err)
	}

	return s.GetTrip(trip.ID)
}

// UpdateTrip applies a partial update to a trip owned by the provider
func (s *TripService) UpdateTrip(providerID, tripID uuid.UUID, req *models.UpdateTripRequest) (*models.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation("INVALID_TRIP", err.Error())
	}

	trip, err := s.trips.GetTripByID(tripID)
	if err != nil {
		return nil, notFoundOr(err, "trip")
	}
	if trip.ProviderID != providerID {
		return nil, apperror.NotOwner()
	}

	publishing := req.Status != nil && *req.Status == models.TripStatusPublished && trip.Status != models.TripStatusPublished
	if publishing {
		profile, err := s.providers.GetByID(providerID)
		if err != nil {
			return nil, apperror.Unexpected(err)
		}
		if !profile.IsApproved() {
			return nil, apperror.ProviderNotApproved()
		}
	}

	req.Apply(trip)
	if trip.DurationDays < 1 || trip.MaxParticipants < 1 {
		return nil, apperror.Validation("INVALID_TRIP", "duration_days and max_participants must be positive")
	}

	if err := s.trips.UpdateTrip(trip); err != nil {
		return nil, notFoundOr(err, "trip")
	}
	return trip, nil
}

// ListTrips searches the catalog. Only published trips are listed unless the viewer
// asks for another status of their own trips (provider_id naming their profile).
// viewerID is uuid.Nil for anonymous callers.
func (s *TripService) ListTrips(viewerID uuid.UUID, filter models.TripFilter) (*models.TripList, error) {
	if filter.Status == "" {
		filter.Status = models.TripStatusPublished
	}
	if !filter.Status.Valid() {
		return nil, apperror.Validation("INVALID_STATUS", "unknown trip status filter")
	}
	if filter.Status != models.TripStatusPublished {
		if err := s.ensureOwnListing(viewerID, filter.ProviderID); err != nil {
			return nil, err
		}
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperror.Validation("INVALID_PRICE_RANGE", "min_price cannot exceed max_price")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, apperror.InvalidRange()
	}

	trips, total, err := s.trips.ListTrips(filter)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	return &models.TripList{
		Trips:      trips,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: filter.TotalPages(total),
	}, nil
}

func (s *TripService) ensureOwnListing(viewerID uuid.UUID, providerID *uuid.UUID) error {
	denied := apperror.Forbidden("UNPUBLISHED_TRIPS", "Only published trips are listed unless you filter by your own provider_id")
	if viewerID == uuid.Nil || providerID == nil {
		return denied
	}
	profile, err := s.providers.GetByUserID(viewerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return denied
		}
		return apperror.Unexpected(err)
	}
	if profile.ID != *providerID {
		return denied
	}
	return nil
}

// GetTrip returns a trip with its provider and its bookable dates
func (s *TripService) GetTrip(tripID uuid.UUID) (*models.TripDetail, error) {
	trip, provider, err := s.trips.GetTripWithProvider(tripID)
	if err != nil {
		return nil, notFoundOr(err, "trip")
	}

	dates, err := s.dates.ListDates(tripID, true)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	return &models.TripDetail{Trip: trip, Provider: *provider, Dates: dates}, nil
}

// ListProviderTrips returns every trip of the provider regardless of status
func (s *TripService) ListProviderTrips(providerID uuid.UUID) ([]models.ProviderTrip, error) {
	trips, err := s.trips.ListProviderTrips(providerID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return trips, nil
}

// newTripDates builds fresh, fully available dates for a trip with the given capacity
func newTripDates(ranges []models.DateRangeRequest, capacity int) ([]models.TripDate, error) {
	dates := make([]models.TripDate, 0, len(ranges))
	for _, r := range ranges {
		if !r.StartDate.Before(r.EndDate) {
			return nil, apperror.InvalidRange()
		}
		dates = append(dates, models.TripDate{
			StartDate:      r.StartDate.UTC(),
			EndDate:        r.EndDate.UTC(),
			Capacity:       capacity,
			AvailableSpots: capacity,
			Status:         models.TripDateAvailable,
		})
	}
	return dates, nil
}
