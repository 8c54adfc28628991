package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/services"
	"github.com/tripmarket/marketplace-backend/pkg/validator"
)

// EnvironmentKey holds the deployment environment in the gin context.
// Unexpected error details are only exposed outside production.
const EnvironmentKey = "environment"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string     `json:"error"`
	Message    string     `json:"message"`
	Code       string     `json:"code,omitempty"`
	Details    string     `json:"details,omitempty"`
	RetryAfter *time.Time `json:"retry_after,omitempty"`
	Type       string     `json:"type,omitempty"`
}

// respondError writes err as a JSON error body with the status of its kind
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var rateErr *services.RateLimitError
	if errors.As(err, &rateErr) {
		retryAfter := rateErr.RetryAfter
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:      string(apperror.KindRateLimited),
			Message:    rateErr.Message,
			Code:       "TOO_MANY_ATTEMPTS",
			RetryAfter: &retryAfter,
			Type:       rateErr.Type,
		})
		return
	}

	appErr := apperror.As(err)
	resp := ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Code:    appErr.Code,
	}

	if appErr.Kind == apperror.KindUnexpected {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("Unexpected error while handling request")
		if c.GetString(EnvironmentKey) != "production" && appErr.Err != nil {
			resp.Details = appErr.Err.Error()
		}
	}

	c.JSON(appErr.HTTPStatus(), resp)
}

// respondBindingError reports a request body that failed binding or validation tags
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   string(apperror.KindValidation),
		Message: validator.DescribeBindingError(err),
		Code:    "INVALID_REQUEST",
	})
}
