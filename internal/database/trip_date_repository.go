package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

const tripDateColumns = `id, trip_id, start_date, end_date, capacity, available_spots, status, created_at, updated_at`

// Execer is satisfied by both the connection and an open transaction
type Execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// TripDateRepository handles dated inventory of trips
type TripDateRepository struct {
	db DB
}

// NewTripDateRepository creates a new TripDateRepository
func NewTripDateRepository(db DB) *TripDateRepository {
	return &TripDateRepository{db: db}
}

// AddDates inserts dates for a trip in one transaction
func (r *TripDateRepository) AddDates(dates []models.TripDate) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range dates {
		if err := insertTripDate(tx, &dates[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trip dates: %w", err)
	}
	return nil
}

// GetDateByID retrieves a trip date by ID
func (r *TripDateRepository) GetDateByID(id uuid.UUID) (*models.TripDate, error) {
	var date models.TripDate
	err := r.db.Get(&date, `SELECT `+tripDateColumns+` FROM trip_dates WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch trip date: %w", err)
	}
	return &date, nil
}

// ListDates returns the dates of a trip ordered by start date; onlyAvailable keeps bookable ones
func (r *TripDateRepository) ListDates(tripID uuid.UUID, onlyAvailable bool) ([]models.TripDate, error) {
	query := `SELECT ` + tripDateColumns + ` FROM trip_dates WHERE trip_id = $1`
	if onlyAvailable {
		query += ` AND status = 'available'`
	}
	query += ` ORDER BY start_date ASC`

	dates := []models.TripDate{}
	if err := r.db.Select(&dates, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to list trip dates: %w", err)
	}
	return dates, nil
}

// Reserve takes n spots from a date in a single conditional update.
// The WHERE clause is the guard: concurrent reservations cannot oversell.
func (r *TripDateRepository) Reserve(ex Execer, dateID uuid.UUID, n int) error {
	query := `
		UPDATE trip_dates
		SET available_spots = available_spots - $1,
			status = CASE WHEN available_spots - $1 = 0 THEN 'full' ELSE status END,
			updated_at = NOW()
		WHERE id = $2 AND status = 'available' AND available_spots >= $1`

	result, err := ex.Exec(query, n, dateID)
	if err != nil {
		return fmt.Errorf("failed to reserve spots: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrInsufficientAvailability
	}
	return nil
}

// Release returns n spots to a date, capped at capacity; a full date becomes available again
func (r *TripDateRepository) Release(ex Execer, dateID uuid.UUID, n int) error {
	query := `
		UPDATE trip_dates
		SET available_spots = LEAST(available_spots + $1, capacity),
			status = CASE WHEN status = 'full' THEN 'available' ELSE status END,
			updated_at = NOW()
		WHERE id = $2`

	result, err := ex.Exec(query, n, dateID)
	if err != nil {
		return fmt.Errorf("failed to release spots: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
