package database

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors returned by repositories; services translate them into apperror values
var (
	ErrNotFound                 = errors.New("record not found")
	ErrDuplicateEmail           = errors.New("email already registered")
	ErrDuplicateReview          = errors.New("trip already reviewed by user")
	ErrDuplicateBookingNumber   = errors.New("booking number already taken")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrStatusChanged            = errors.New("booking status changed concurrently")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure,
// optionally restricted to the named constraint
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
