package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

const tripColumns = `t.id, t.provider_id, t.title, t.description, t.destination, t.duration_days,
	t.max_participants, t.base_price, t.included, t.excluded, t.activity_type, t.difficulty_level,
	t.customization_options, t.itinerary, t.status, t.rating, t.review_count, t.created_at, t.updated_at`

// TripRepository handles trip catalog database operations
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// CreateTrip inserts a trip and its initial dates in one transaction
func (r *TripRepository) CreateTrip(trip *models.Trip, dates []models.TripDate) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}

	query := `
		INSERT INTO trips (
			id, provider_id, title, description, destination, duration_days,
			max_participants, base_price, included, excluded, activity_type,
			difficulty_level, customization_options, itinerary, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING rating, review_count, created_at, updated_at`

	err = tx.QueryRowx(query,
		trip.ID, trip.ProviderID, trip.Title, trip.Description, trip.Destination, trip.DurationDays,
		trip.MaxParticipants, trip.BasePrice, trip.Included, trip.Excluded, trip.ActivityType,
		trip.DifficultyLevel, trip.CustomizationOptions, trip.Itinerary, trip.Status,
	).Scan(&trip.Rating, &trip.ReviewCount, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	for i := range dates {
		dates[i].TripID = trip.ID
		if err := insertTripDate(tx, &dates[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trip creation: %w", err)
	}
	return nil
}

// GetTripByID retrieves a trip by ID
func (r *TripRepository) GetTripByID(id uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.Get(&trip, `SELECT `+tripColumns+` FROM trips t WHERE t.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch trip: %w", err)
	}
	return &trip, nil
}

type tripWithProvider struct {
	models.Trip
	models.ProviderSummary
}

// GetTripWithProvider retrieves a trip joined with its provider summary
func (r *TripRepository) GetTripWithProvider(id uuid.UUID) (*models.Trip, *models.ProviderSummary, error) {
	query := `
		SELECT ` + tripColumns + `,
			pp.id AS provider_profile_id,
			pp.business_name AS provider_business_name,
			pp.location AS provider_location,
			pp.approval_state AS provider_approval_state,
			u.first_name AS provider_first_name,
			u.last_name AS provider_last_name
		FROM trips t
		JOIN provider_profiles pp ON pp.id = t.provider_id
		JOIN users u ON u.id = pp.user_id
		WHERE t.id = $1`

	var row tripWithProvider
	if err := r.db.Get(&row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to fetch trip: %w", err)
	}
	return &row.Trip, &row.ProviderSummary, nil
}

// UpdateTrip persists every mutable field of a trip owned by trip.ProviderID
func (r *TripRepository) UpdateTrip(trip *models.Trip) error {
	query := `
		UPDATE trips
		SET title = $1, description = $2, destination = $3, duration_days = $4,
			max_participants = $5, base_price = $6, included = $7, excluded = $8,
			activity_type = $9, difficulty_level = $10, customization_options = $11,
			itinerary = $12, status = $13, updated_at = NOW()
		WHERE id = $14 AND provider_id = $15
		RETURNING updated_at`

	err := r.db.QueryRow(query,
		trip.Title, trip.Description, trip.Destination, trip.DurationDays,
		trip.MaxParticipants, trip.BasePrice, trip.Included, trip.Excluded,
		trip.ActivityType, trip.DifficultyLevel, trip.CustomizationOptions,
		trip.Itinerary, trip.Status, trip.ID, trip.ProviderID,
	).Scan(&trip.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update trip: %w", err)
	}
	return nil
}

// ListTrips returns a page of trips matching every provided filter plus the total match count
func (r *TripRepository) ListTrips(filter models.TripFilter) ([]models.Trip, int, error) {
	where, args := buildTripFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM trips t WHERE ` + where
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s FROM trips t WHERE %s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`,
		tripColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	trips := []models.Trip{}
	if err := r.db.Select(&trips, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	return trips, total, nil
}

func buildTripFilter(f models.TripFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	add := func(format string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if f.Status != "" {
		add("t.status = $%d", f.Status)
	}
	if f.Destination != "" {
		add(`t.destination ILIKE $%d`, "%"+escapeLike(f.Destination)+"%")
	}
	if f.ActivityType != "" {
		add("t.activity_type = $%d", f.ActivityType)
	}
	if f.MinPrice != nil {
		add("t.base_price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("t.base_price <= $%d", *f.MaxPrice)
	}
	if f.ProviderID != nil {
		add("t.provider_id = $%d", *f.ProviderID)
	}

	if f.StartDate != nil || f.EndDate != nil {
		dateConds := []string{"td.trip_id = t.id", "td.status = 'available'"}
		if f.StartDate != nil {
			args = append(args, *f.StartDate)
			dateConds = append(dateConds, fmt.Sprintf("td.end_date >= $%d", len(args)))
		}
		if f.EndDate != nil {
			args = append(args, *f.EndDate)
			dateConds = append(dateConds, fmt.Sprintf("td.start_date <= $%d", len(args)))
		}
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM trip_dates td WHERE "+strings.Join(dateConds, " AND ")+")")
	}

	if len(conditions) == 0 {
		return "TRUE", args
	}
	return strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListProviderTrips returns all trips of a provider with their booking counts
func (r *TripRepository) ListProviderTrips(providerID uuid.UUID) ([]models.ProviderTrip, error) {
	query := `
		SELECT ` + tripColumns + `,
			(SELECT COUNT(*) FROM bookings b WHERE b.trip_id = t.id) AS booking_count
		FROM trips t
		WHERE t.provider_id = $1
		ORDER BY t.created_at DESC`

	trips := []models.ProviderTrip{}
	if err := r.db.Select(&trips, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list provider trips: %w", err)
	}
	return trips, nil
}

func insertTripDate(tx *sqlx.Tx, date *models.TripDate) error {
	if date.ID == uuid.Nil {
		date.ID = uuid.New()
	}
	if date.Status == "" {
		date.Status = models.TripDateAvailable
	}

	query := `
		INSERT INTO trip_dates (id, trip_id, start_date, end_date, capacity, available_spots, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := tx.QueryRowx(query,
		date.ID, date.TripID, date.StartDate, date.EndDate, date.Capacity, date.AvailableSpots, date.Status,
	).Scan(&date.CreatedAt, &date.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip date: %w", err)
	}
	return nil
}
