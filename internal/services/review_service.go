package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// ReviewService records traveler reviews and keeps trip ratings current
type ReviewService struct {
	reviews  ReviewStore
	trips    TripStore
	bookings BookingStore
	notifier *NotificationService
}

// NewReviewService creates a ReviewService
func NewReviewService(reviews ReviewStore, trips TripStore, bookings BookingStore, notifier *NotificationService) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		trips:    trips,
		bookings: bookings,
		notifier: notifier,
	}
}

// CreateReview stores a rating for a trip the user has completed
func (s *ReviewService) CreateReview(ctx context.Context, userID, tripID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return nil, apperror.InvalidRating()
	}

	if _, err := s.trips.GetTripByID(tripID); err != nil {
		return nil, notFoundOr(err, "trip")
	}

	completed, err := s.bookings.HasCompletedBooking(userID, tripID)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	if !completed {
		return nil, apperror.ReviewNotAllowed()
	}

	review := &models.Review{
		UserID:  userID,
		TripID:  tripID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	err = s.reviews.CreateReview(review)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrDuplicateReview):
		return nil, apperror.DuplicateReview()
	case errors.Is(err, database.ErrNotFound):
		return nil, apperror.NotFound("trip")
	default:
		return nil, apperror.Unexpected(err)
	}

	s.notifier.ReviewCreated(ctx, review)
	return review, nil
}

// ListReviews returns a page of a trip's reviews, newest first
func (s *ReviewService) ListReviews(tripID uuid.UUID, page models.Pagination) (*models.ReviewList, error) {
	if _, err := s.trips.GetTripByID(tripID); err != nil {
		return nil, notFoundOr(err, "trip")
	}

	reviews, total, err := s.reviews.ListByTrip(tripID, page)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}

	return &models.ReviewList{
		Reviews:    reviews,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}, nil
}
