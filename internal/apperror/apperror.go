// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindState           Kind = "state_error"
	KindRateLimited     Kind = "rate_limited"
	KindUnexpected      Kind = "unexpected"
)

// Error is a classified application error with a stable machine-readable code
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error returns the message, followed by the wrapped cause when there is one
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code so callers can compare against the constructors below
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus maps the error kind to an HTTP status code.
// Conflicts are reported as 400 to match the public API contract for duplicates.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation builds a validation error with a custom message
func Validation(code, message string) *Error {
	return newError(KindValidation, code, message)
}

// NotFound builds a not-found error for the named resource
func NotFound(resource string) *Error {
	return newError(KindNotFound, "NOT_FOUND", resource+" not found")
}

// Forbidden builds a forbidden error
func Forbidden(code, message string) *Error {
	return newError(KindForbidden, code, message)
}

// Unexpected wraps an internal failure
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Code: "INTERNAL_ERROR", Message: "An unexpected error occurred", Err: err}
}

// Identity & access

// InvalidRole rejects a role other than traveler or provider
func InvalidRole() *Error {
	return newError(KindValidation, "INVALID_ROLE", "role must be 'traveler' or 'provider'")
}

// DuplicateEmail reports that the email is already registered
func DuplicateEmail() *Error {
	return newError(KindConflict, "DUPLICATE_EMAIL", "An account with this email already exists")
}

// InvalidCredentials is the single failure returned for any bad login
func InvalidCredentials() *Error {
	return newError(KindUnauthenticated, "INVALID_CREDENTIALS", "Invalid email or password")
}

// Unauthenticated builds an authentication failure
func Unauthenticated(code, message string) *Error {
	return newError(KindUnauthenticated, code, message)
}

// RateLimited reports throttled login attempts
func RateLimited(message string) *Error {
	return newError(KindRateLimited, "TOO_MANY_ATTEMPTS", message)
}

// Catalog & availability

// NotOwner rejects a provider acting on another provider's trip
func NotOwner() *Error {
	return newError(KindForbidden, "NOT_OWNER", "You do not own this trip")
}

// ProviderNotApproved rejects publishing by a provider still awaiting approval
func ProviderNotApproved() *Error {
	return newError(KindForbidden, "PROVIDER_NOT_APPROVED", "Your provider account must be approved before publishing trips")
}

// InvalidRange rejects a date range whose start is not before its end
func InvalidRange() *Error {
	return newError(KindValidation, "INVALID_RANGE", "start_date must be before end_date")
}

// Booking lifecycle

// TripUnavailable rejects booking a trip that is not published
func TripUnavailable() *Error {
	return newError(KindState, "TRIP_UNAVAILABLE", "This trip is not available for booking")
}

// InsufficientAvailability reports a date with fewer open spots than requested
func InsufficientAvailability() *Error {
	return newError(KindState, "INSUFFICIENT_AVAILABILITY", "Not enough spots available for this date")
}

// InvalidTransition rejects a booking status change the lifecycle does not allow
func InvalidTransition(from, to string) *Error {
	return newError(KindState, "INVALID_TRANSITION", fmt.Sprintf("Cannot change booking status from %s to %s", from, to))
}

// CancellationWindowViolation rejects a cancellation too close to the trip start
func CancellationWindowViolation(window string) *Error {
	return newError(KindState, "CANCELLATION_WINDOW_VIOLATION", fmt.Sprintf("Bookings cannot be cancelled less than %s before the trip starts", window))
}

// BookingNumberExhausted reports that no unique booking number was found within the retry budget
func BookingNumberExhausted() *Error {
	return newError(KindConflict, "BOOKING_NUMBER_EXHAUSTED", "Could not allocate a unique booking number, please retry")
}

// Reviews

// InvalidRating rejects a rating outside 1 to 5
func InvalidRating() *Error {
	return newError(KindValidation, "INVALID_RATING", "rating must be between 1 and 5")
}

// DuplicateReview reports a second review of the same trip by the same traveler
func DuplicateReview() *Error {
	return newError(KindConflict, "DUPLICATE_REVIEW", "You have already reviewed this trip")
}

// ReviewNotAllowed rejects a review without a completed booking of the trip
func ReviewNotAllowed() *Error {
	return newError(KindForbidden, "REVIEW_NOT_ALLOWED", "Only travelers with a completed booking can review this trip")
}

// As extracts an *Error from err, wrapping anything unclassified as unexpected
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}
