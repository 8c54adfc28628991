package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a traveler's rating of a trip
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TripID    uuid.UUID `json:"trip_id" db:"trip_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReviewWithAuthor adds the author's display name
type ReviewWithAuthor struct {
	Review
	AuthorFirstName string `json:"author_first_name" db:"author_first_name"`
	AuthorLastName  string `json:"author_last_name" db:"author_last_name"`
}

// ReviewList is a page of reviews
type ReviewList struct {
	Reviews    []ReviewWithAuthor `json:"reviews"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// CreateReviewRequest is the body of POST /trips/:id/reviews.
// Rating range is checked by the service so the error carries its own code.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" binding:"max=5000"`
}
