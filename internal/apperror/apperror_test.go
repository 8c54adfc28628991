package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("BAD", "bad"), http.StatusBadRequest},
		{NotFound("trip"), http.StatusNotFound},
		{InvalidCredentials(), http.StatusUnauthorized},
		{NotOwner(), http.StatusForbidden},
		{DuplicateEmail(), http.StatusBadRequest},
		{DuplicateReview(), http.StatusBadRequest},
		{InsufficientAvailability(), http.StatusBadRequest},
		{CancellationWindowViolation("48h"), http.StatusBadRequest},
		{RateLimited("slow down"), http.StatusTooManyRequests},
		{Unexpected(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", InsufficientAvailability())

	assert.True(t, errors.Is(wrapped, InsufficientAvailability()))
	assert.False(t, errors.Is(wrapped, TripUnavailable()))
}

func TestAs(t *testing.T) {
	t.Run("Classified", func(t *testing.T) {
		err := As(fmt.Errorf("outer: %w", NotOwner()))
		assert.Equal(t, KindForbidden, err.Kind)
		assert.Equal(t, "NOT_OWNER", err.Code)
	})

	t.Run("Unclassified", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := As(cause)
		assert.Equal(t, KindUnexpected, err.Kind)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection reset")
	})
}
