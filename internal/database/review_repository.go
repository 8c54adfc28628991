package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview inserts a review and refreshes the trip's rating aggregate.
// The trip row is locked so concurrent reviews of the same trip serialize.
func (r *ReviewRepository) CreateReview(review *models.Review) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tripID uuid.UUID
	if err := tx.QueryRowx(`SELECT id FROM trips WHERE id = $1 FOR UPDATE`, review.TripID).Scan(&tripID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock trip: %w", err)
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	query := `
		INSERT INTO reviews (id, user_id, trip_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err = tx.QueryRowx(query, review.ID, review.UserID, review.TripID, review.Rating, review.Comment).
		Scan(&review.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "reviews_user_trip_unique") {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	aggregate := `
		UPDATE trips
		SET review_count = review_count + 1,
			rating = (SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE trip_id = $1),
			updated_at = NOW()
		WHERE id = $1`

	if _, err := tx.Exec(aggregate, review.TripID); err != nil {
		return fmt.Errorf("failed to update trip rating: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}
	return nil
}

// ListByTrip returns a page of a trip's reviews, newest first, plus the total count
func (r *ReviewRepository) ListByTrip(tripID uuid.UUID, page models.Pagination) ([]models.ReviewWithAuthor, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM reviews WHERE trip_id = $1`, tripID); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `
		SELECT r.id, r.user_id, r.trip_id, r.rating, r.comment, r.created_at,
			u.first_name AS author_first_name, u.last_name AS author_last_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.trip_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`

	reviews := []models.ReviewWithAuthor{}
	if err := r.db.Select(&reviews, query, tripID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}
