package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

const bookingDetailSelect = `
	SELECT b.id, b.booking_number, b.traveler_id, b.trip_id, b.trip_date_id, b.participant_count,
		b.customizations, b.total_price, b.commission_rate, b.commission_amount, b.payment_status,
		b.booking_status, b.traveler_info, b.special_requests, b.provider_response,
		b.cancellation_reason, b.cancelled_at, b.completed_at, b.created_at, b.updated_at,
		t.title AS trip_title, t.provider_id,
		td.start_date, td.end_date,
		u.email AS traveler_email, u.first_name || ' ' || u.last_name AS traveler_name
	FROM bookings b
	JOIN trips t ON t.id = b.trip_id
	JOIN trip_dates td ON td.id = b.trip_date_id
	JOIN users u ON u.id = b.traveler_id`

// Cancellation describes a move to cancelled that returns the booking's spots
type Cancellation struct {
	Reason           string
	ProviderResponse string
	At               time.Time
	FromStatuses     []models.BookingStatus
}

// BookingRepository handles booking database operations
type BookingRepository struct {
	db    DB
	dates *TripDateRepository
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB, dates *TripDateRepository) *BookingRepository {
	return &BookingRepository{db: db, dates: dates}
}

// BookingNumberExists reports whether a booking number is already taken
func (r *BookingRepository) BookingNumberExists(number string) (bool, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM bookings WHERE booking_number = $1`, number); err != nil {
		return false, fmt.Errorf("failed to check booking number: %w", err)
	}
	return count > 0, nil
}

// CreateBooking reserves spots and inserts the booking in one transaction.
// Either both happen or neither does.
func (r *BookingRepository) CreateBooking(booking *models.Booking) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.dates.Reserve(tx, booking.TripDateID, booking.ParticipantCount); err != nil {
		return err
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	query := `
		INSERT INTO bookings (
			id, booking_number, traveler_id, trip_id, trip_date_id, participant_count,
			customizations, total_price, commission_rate, commission_amount,
			payment_status, booking_status, traveler_info, special_requests
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err = tx.QueryRowx(query,
		booking.ID, booking.BookingNumber, booking.TravelerID, booking.TripID, booking.TripDateID,
		booking.ParticipantCount, booking.Customizations, booking.TotalPrice, booking.CommissionRate,
		booking.CommissionAmount, booking.PaymentStatus, booking.BookingStatus, booking.TravelerInfo,
		booking.SpecialRequests,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "bookings_booking_number_key") {
			return ErrDuplicateBookingNumber
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

// GetBookingByID retrieves a booking with its trip, date and traveler facts
func (r *BookingRepository) GetBookingByID(id uuid.UUID) (*models.BookingDetail, error) {
	var booking models.BookingDetail
	if err := r.db.Get(&booking, bookingDetailSelect+` WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &booking, nil
}

// GetActiveForTraveler retrieves a pending or confirmed booking owned by the traveler
func (r *BookingRepository) GetActiveForTraveler(id, travelerID uuid.UUID) (*models.BookingDetail, error) {
	query := bookingDetailSelect + `
		WHERE b.id = $1 AND b.traveler_id = $2 AND b.booking_status IN ('pending', 'confirmed')`

	var booking models.BookingDetail
	if err := r.db.Get(&booking, query, id, travelerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &booking, nil
}

// Cancel moves a booking to cancelled and releases its spots in the same transaction.
// ErrStatusChanged is returned when the booking is no longer in one of c.FromStatuses.
func (r *BookingRepository) Cancel(id uuid.UUID, c Cancellation) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	from := make([]string, len(c.FromStatuses))
	for i, s := range c.FromStatuses {
		from[i] = string(s)
	}

	query := `
		UPDATE bookings
		SET booking_status = 'cancelled',
			cancellation_reason = $1,
			provider_response = COALESCE(NULLIF($2::text, ''), provider_response),
			cancelled_at = $3,
			updated_at = NOW()
		WHERE id = $4 AND booking_status = ANY($5)
		RETURNING trip_date_id, participant_count`

	var dateID uuid.UUID
	var participants int
	err = tx.QueryRowx(query, c.Reason, c.ProviderResponse, c.At, id, pq.Array(from)).Scan(&dateID, &participants)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrStatusChanged
		}
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if err := r.dates.Release(tx, dateID, participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return nil
}

// UpdateStatus moves a booking from one status to another without touching inventory
func (r *BookingRepository) UpdateStatus(id uuid.UUID, from, to models.BookingStatus, response string) error {
	query := `
		UPDATE bookings
		SET booking_status = $1,
			provider_response = COALESCE(NULLIF($2::text, ''), provider_response),
			updated_at = NOW()
		WHERE id = $3 AND booking_status = $4`

	result, err := r.db.Exec(query, to, response, id, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrStatusChanged
	}
	return nil
}

// ListByTraveler returns a page of the traveler's bookings, newest first
func (r *BookingRepository) ListByTraveler(travelerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	return r.list("b.traveler_id = $1", travelerID, filter)
}

// ListByProvider returns a page of bookings across the provider's trips, newest first
func (r *BookingRepository) ListByProvider(providerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	return r.list("t.provider_id = $1", providerID, filter)
}

func (r *BookingRepository) list(ownerCond string, ownerID uuid.UUID, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	where := ownerCond
	args := []interface{}{ownerID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND b.booking_status = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings b JOIN trips t ON t.id = b.trip_id WHERE ` + where
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	listQuery := fmt.Sprintf(`%s WHERE %s ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`,
		bookingDetailSelect, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	bookings := []models.BookingDetail{}
	if err := r.db.Select(&bookings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

// CompleteFinished marks confirmed bookings whose date has ended as completed
func (r *BookingRepository) CompleteFinished(now time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE bookings b
		SET booking_status = 'completed', completed_at = $1, updated_at = NOW()
		FROM trip_dates td
		WHERE td.id = b.trip_date_id
			AND b.booking_status = 'confirmed'
			AND td.end_date < $1
		RETURNING b.id`

	ids := []uuid.UUID{}
	if err := r.db.Select(&ids, query, now); err != nil {
		return nil, fmt.Errorf("failed to complete bookings: %w", err)
	}
	return ids, nil
}

// HasCompletedBooking reports whether the user completed at least one booking of the trip
func (r *BookingRepository) HasCompletedBooking(userID, tripID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE traveler_id = $1 AND trip_id = $2 AND booking_status = 'completed'
		)`

	var exists bool
	if err := r.db.Get(&exists, query, userID, tripID); err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return exists, nil
}
