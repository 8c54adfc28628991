package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

var tripDateRowColumns = []string{
	"id", "trip_id", "start_date", "end_date", "capacity", "available_spots", "status", "created_at", "updated_at",
}

func TestReserve(t *testing.T) {
	dateID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripDateRepository(db)

		mock.ExpectExec(`UPDATE trip_dates\s+SET available_spots = available_spots - \$1`).
			WithArgs(3, dateID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Reserve(db, dateID, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient Availability", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripDateRepository(db)

		mock.ExpectExec(`WHERE id = \$2 AND status = 'available' AND available_spots >= \$1`).
			WithArgs(5, dateID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Reserve(db, dateID, 5)
		assert.ErrorIs(t, err, ErrInsufficientAvailability)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripDateRepository(db)

		mock.ExpectExec(`UPDATE trip_dates`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Reserve(db, dateID, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to reserve spots")
	})
}

func TestRelease(t *testing.T) {
	dateID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripDateRepository(db)

		mock.ExpectExec(`SET available_spots = LEAST\(available_spots \+ \$1, capacity\)`).
			WithArgs(2, dateID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Release(db, dateID, 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Date", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewTripDateRepository(db)

		mock.ExpectExec(`UPDATE trip_dates`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Release(db, dateID, 2), ErrNotFound)
	})
}

func TestAddDates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTripDateRepository(db)
	tripID := uuid.New()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	dates := []models.TripDate{
		{TripID: tripID, StartDate: start, EndDate: start.AddDate(0, 0, 5), Capacity: 10, AvailableSpots: 10},
		{TripID: tripID, StartDate: start.AddDate(0, 1, 0), EndDate: start.AddDate(0, 1, 5), Capacity: 10, AvailableSpots: 10},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO trip_dates`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(`INSERT INTO trip_dates`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	require.NoError(t, repo.AddDates(dates))
	for _, d := range dates {
		assert.NotEqual(t, uuid.Nil, d.ID)
		assert.Equal(t, models.TripDateAvailable, d.Status)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTripDateRepository(db)
	tripID := uuid.New()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`FROM trip_dates WHERE trip_id = \$1 AND status = 'available' ORDER BY start_date ASC`).
		WithArgs(tripID).
		WillReturnRows(sqlmock.NewRows(tripDateRowColumns).AddRow(
			uuid.New().String(), tripID.String(), start, start.AddDate(0, 0, 5), 10, 4, "available", now, now,
		))

	dates, err := repo.ListDates(tripID, true)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, 4, dates[0].AvailableSpots)

	mock.ExpectQuery(`FROM trip_dates WHERE trip_id = \$1 ORDER BY start_date ASC`).
		WithArgs(tripID).
		WillReturnRows(sqlmock.NewRows(tripDateRowColumns))

	dates, err = repo.ListDates(tripID, false)
	require.NoError(t, err)
	assert.Empty(t, dates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDateByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTripDateRepository(db)
	dateID := uuid.New()

	mock.ExpectQuery(`FROM trip_dates WHERE id = \$1`).
		WithArgs(dateID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetDateByID(dateID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
