package models

import (
	"time"

	"github.com/google/uuid"
)

// TripDateStatus is the inventory state of a dated occurrence
type TripDateStatus string

const (
	TripDateAvailable TripDateStatus = "available"
	TripDateFull      TripDateStatus = "full"
	TripDateClosed    TripDateStatus = "closed"
)

// TripDate is a dated occurrence of a trip with its own capacity.
// 0 <= AvailableSpots <= Capacity always holds.
type TripDate struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	TripID         uuid.UUID      `json:"trip_id" db:"trip_id"`
	StartDate      time.Time      `json:"start_date" db:"start_date"`
	EndDate        time.Time      `json:"end_date" db:"end_date"`
	Capacity       int            `json:"capacity" db:"capacity"`
	AvailableSpots int            `json:"available_spots" db:"available_spots"`
	Status         TripDateStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// DateRangeRequest is one entry of POST /trips/:id/dates
type DateRangeRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// AddDatesRequest is the body of POST /trips/:id/dates
type AddDatesRequest struct {
	Dates []DateRangeRequest `json:"dates" binding:"required,min=1,max=100,dive"`
}
