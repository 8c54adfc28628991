package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/config"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// Actor identifies the authenticated user performing an operation
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// BookingService runs the booking lifecycle
type BookingService struct {
	bookings  BookingStore
	trips     TripStore
	dates     TripDateStore
	providers ProviderStore
	users     UserStore
	notifier  *NotificationService
	audit     Auditor
	config    config.BookingConfig
	logger    *logrus.Logger

	now            func() time.Time
	generateNumber func(time.Time) (string, error)
}

// NewBookingService creates a BookingService
func NewBookingService(
	bookings BookingStore,
	trips TripStore,
	dates TripDateStore,
	providers ProviderStore,
	users UserStore,
	notifier *NotificationService,
	audit Auditor,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:       bookings,
		trips:          trips,
		dates:          dates,
		providers:      providers,
		users:          users,
		notifier:       notifier,
		audit:          audit,
		config:         cfg,
		logger:         logger,
		now:            time.Now,
		generateNumber: NewBookingNumber,
	}
}

// CreateBooking prices the request, reserves spots and records a pending booking
func (s *BookingService) CreateBooking(ctx context.Context, travelerID uuid.UUID, req *models.CreateBookingRequest, meta RequestMeta) (*models.BookingDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation("INVALID_BOOKING", err.Error())
	}

	trip, err := s.trips.GetTripByID(req.TripID)
	if err != nil {
		return nil, notFoundOr(err, "trip")
	}
	if !trip.Status.Bookable() {
		return nil, apperror.TripUnavailable()
	}

	date, err := s.dates.GetDateByID(req.TripDateID)
	if err != nil {
		return nil, notFoundOr(err, "trip date")
	}
	if date.TripID != trip.ID {
		return nil, apperror.NotFound("trip date")
	}
	now := s.now()
	if !date.StartDate.After(now) || date.Status == models.TripDateClosed {
		return nil, apperror.TripUnavailable()
	}

	total, err := CalculateTotal(trip, req.ParticipantCount, req.Customizations)
	if err != nil {
		return nil, apperror.Validation("INVALID_CUSTOMIZATION", err.Error())
	}

	provider, err := s.providers.GetByID(trip.ProviderID)
	if err != nil {
		return nil, apperror.Unexpected(fmt.Errorf("failed to load trip provider: %w", err))
	}
	rate := provider.EffectiveCommissionRate(s.config.DefaultCommissionRate)

	booking := &models.Booking{
		TravelerID:       travelerID,
		TripID:           trip.ID,
		TripDateID:       date.ID,
		ParticipantCount: req.ParticipantCount,
		Customizations:   req.Customizations,
		TotalPrice:       total,
		CommissionRate:   rate,
		CommissionAmount: CalculateCommission(total, rate),
		PaymentStatus:    models.PaymentPending,
		BookingStatus:    models.BookingPending,
		TravelerInfo:     req.TravelerInfo,
		SpecialRequests:  req.SpecialRequests,
	}

	if err := s.insertWithUniqueNumber(booking, now); err != nil {
		return nil, err
	}

	detail, err := s.bookings.GetBookingByID(booking.ID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	s.logAudit(travelerID, booking.ID, "booking_created", map[string]interface{}{
		"booking_number":    booking.BookingNumber,
		"trip_id":           trip.ID,
		"participant_count": booking.ParticipantCount,
		"total_price":       booking.TotalPrice.StringFixed(2),
	}, meta)

	providerUser, err := s.users.GetUserByProviderID(trip.ProviderID)
	if err != nil {
		s.logger.WithError(err).WithField("provider_id", trip.ProviderID).Warn("Could not load provider for booking notification")
		providerUser = nil
	}
	s.notifier.BookingCreated(ctx, detail, providerUser)

	return detail, nil
}

// insertWithUniqueNumber allocates a booking number and inserts the booking, retrying on collisions.
// The UNIQUE constraint is the authoritative guard; the pre-check only avoids wasted transactions.
func (s *BookingService) insertWithUniqueNumber(booking *models.Booking, now time.Time) error {
	for attempt := 0; attempt < s.config.NumberMaxAttempts; attempt++ {
		number, err := s.generateNumber(now)
		if err != nil {
			return apperror.Unexpected(err)
		}

		exists, err := s.bookings.BookingNumberExists(number)
		if err != nil {
			return apperror.Unexpected(err)
		}
		if exists {
			continue
		}

		booking.BookingNumber = number
		err = s.bookings.CreateBooking(booking)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, database.ErrDuplicateBookingNumber):
			continue
		case errors.Is(err, database.ErrInsufficientAvailability):
			return apperror.InsufficientAvailability()
		default:
			return apperror.Unexpected(err)
		}
	}
	return apperror.BookingNumberExhausted()
}

// UpdateStatus applies a status change requested by the trip's provider or the booking's traveler
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID uuid.UUID, req *models.UpdateBookingStatusRequest, meta RequestMeta) (*models.BookingDetail, error) {
	if !req.Status.Valid() {
		return nil, apperror.Validation("INVALID_STATUS", "status must be one of pending, confirmed, cancelled, completed")
	}

	booking, err := s.bookings.GetBookingByID(bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}

	isProvider, err := s.ownsTrip(actor, booking)
	if err != nil {
		return nil, err
	}
	isTraveler := booking.TravelerID == actor.UserID
	if !isProvider && !isTraveler {
		return nil, apperror.Forbidden("NOT_BOOKING_PARTY", "You are not a party to this booking")
	}

	from, to := booking.BookingStatus, req.Status

	switch {
	case isProvider && models.ProviderMayTransition(from, to):
		if to == models.BookingCancelled {
			err = s.bookings.Cancel(booking.ID, database.Cancellation{
				Reason:           "Declined by provider",
				ProviderResponse: req.Message,
				At:               s.now(),
				FromStatuses:     []models.BookingStatus{from},
			})
		} else {
			err = s.bookings.UpdateStatus(booking.ID, from, to, req.Message)
		}
		if errors.Is(err, database.ErrStatusChanged) {
			return nil, apperror.InvalidTransition(string(from), string(to))
		}
		if err != nil {
			return nil, apperror.Unexpected(err)
		}

	case isTraveler && models.TravelerMayTransition(from, to):
		if err := s.cancelAsTraveler(booking, req.Message); err != nil {
			return nil, err
		}

	default:
		return nil, apperror.InvalidTransition(string(from), string(to))
	}

	updated, err := s.bookings.GetBookingByID(booking.ID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	s.logAudit(actor.UserID, booking.ID, "booking_status_changed", map[string]interface{}{
		"from": from,
		"to":   to,
	}, meta)
	s.notifyCounterparty(ctx, updated, from, isProvider)

	return updated, nil
}

// CancelBooking cancels a traveler's own pending or confirmed booking under the cancellation policy
func (s *BookingService) CancelBooking(ctx context.Context, travelerID, bookingID uuid.UUID, reason string, meta RequestMeta) (*models.BookingDetail, error) {
	booking, err := s.bookings.GetActiveForTraveler(bookingID, travelerID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}

	if err := s.cancelAsTraveler(booking, reason); err != nil {
		return nil, err
	}

	updated, err := s.bookings.GetBookingByID(booking.ID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	s.logAudit(travelerID, booking.ID, "booking_cancelled", map[string]interface{}{
		"from":   booking.BookingStatus,
		"reason": reason,
	}, meta)
	s.notifyCounterparty(ctx, updated, booking.BookingStatus, false)

	return updated, nil
}

func (s *BookingService) cancelAsTraveler(booking *models.BookingDetail, reason string) error {
	now := s.now()
	if booking.StartDate.Sub(now) < s.config.CancellationWindow {
		return apperror.CancellationWindowViolation(formatWindow(s.config.CancellationWindow))
	}

	err := s.bookings.Cancel(booking.ID, database.Cancellation{
		Reason:       reason,
		At:           now,
		FromStatuses: []models.BookingStatus{models.BookingPending, models.BookingConfirmed},
	})
	if errors.Is(err, database.ErrStatusChanged) {
		return apperror.NotFound("booking")
	}
	if err != nil {
		return apperror.Unexpected(err)
	}
	return nil
}

// CompleteFinishedBookings moves confirmed bookings whose trip date has ended to completed
func (s *BookingService) CompleteFinishedBookings(ctx context.Context) (int, error) {
	ids, err := s.bookings.CompleteFinished(s.now())
	if err != nil {
		return 0, err
	}
	s.notifier.BookingsCompleted(ctx, ids)
	return len(ids), nil
}

// GetBooking returns a booking visible to its traveler and to the trip's provider
func (s *BookingService) GetBooking(actor Actor, bookingID uuid.UUID) (*models.BookingDetail, error) {
	booking, err := s.bookings.GetBookingByID(bookingID)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	if booking.TravelerID == actor.UserID {
		return booking, nil
	}
	isProvider, err := s.ownsTrip(actor, booking)
	if err != nil {
		return nil, err
	}
	if !isProvider {
		return nil, apperror.Forbidden("NOT_BOOKING_PARTY", "You are not a party to this booking")
	}
	return booking, nil
}

// ListTravelerBookings returns a page of the traveler's bookings
func (s *BookingService) ListTravelerBookings(travelerID uuid.UUID, filter models.BookingFilter) (*models.BookingList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("INVALID_STATUS", "unknown booking status filter")
	}
	bookings, total, err := s.bookings.ListByTraveler(travelerID, filter)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return bookingList(bookings, total, filter.Pagination), nil
}

// ListProviderBookings returns a page of bookings across the provider's trips
func (s *BookingService) ListProviderBookings(providerID uuid.UUID, filter models.BookingFilter) (*models.BookingList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("INVALID_STATUS", "unknown booking status filter")
	}
	bookings, total, err := s.bookings.ListByProvider(providerID, filter)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return bookingList(bookings, total, filter.Pagination), nil
}

func (s *BookingService) ownsTrip(actor Actor, booking *models.BookingDetail) (bool, error) {
	if actor.Role != models.RoleProvider {
		return false, nil
	}
	profile, err := s.providers.GetByUserID(actor.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Unexpected(err)
	}
	return profile.ID == booking.ProviderID, nil
}

// notifyCounterparty emails the side that did not make the change
func (s *BookingService) notifyCounterparty(ctx context.Context, booking *models.BookingDetail, from models.BookingStatus, changedByProvider bool) {
	var recipient *models.User
	var err error
	if changedByProvider {
		recipient, err = s.users.GetUserByID(booking.TravelerID)
	} else {
		recipient, err = s.users.GetUserByProviderID(booking.ProviderID)
	}
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Could not load notification recipient")
		recipient = nil
	}
	s.notifier.BookingStatusChanged(ctx, booking, from, recipient)
}

func (s *BookingService) logAudit(userID, bookingID uuid.UUID, action string, details map[string]interface{}, meta RequestMeta) {
	if err := s.audit.LogBookingEvent(userID, bookingID, action, details, meta); err != nil {
		s.logger.WithError(err).WithField("action", action).Warn("Failed to write audit log")
	}
}

func bookingList(bookings []models.BookingDetail, total int, page models.Pagination) *models.BookingList {
	return &models.BookingList{
		Bookings:   bookings,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return d.String()
}

// notFoundOr maps a repository miss to a NotFound error and anything else to Unexpected
func notFoundOr(err error, resource string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperror.NotFound(resource)
	}
	return apperror.Unexpected(err)
}
