package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

const (
	providerIDKey      = "provider_id"
	providerProfileKey = "provider_profile"
)

// ProviderLoader finds the provider profile of a user
type ProviderLoader interface {
	GetByUserID(userID uuid.UUID) (*models.ProviderProfile, error)
}

// RequireProviderProfile loads the provider profile of the current user.
// Must be used after AuthMiddleware and RequireRole(models.RoleProvider).
func RequireProviderProfile(providers ProviderLoader, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abort(c, http.StatusUnauthorized, "unauthorized", "MISSING_USER_CONTEXT", "User context not found")
			return
		}

		profile, err := providers.GetByUserID(userCtx.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				abort(c, http.StatusForbidden, "forbidden", "NOT_PROVIDER", "Provider account not found")
				return
			}
			logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to load provider profile")
			abort(c, http.StatusInternalServerError, "unexpected", "INTERNAL_ERROR", "An unexpected error occurred")
			return
		}

		// Store profile info in context for handlers to use
		c.Set(providerIDKey, profile.ID)
		c.Set(providerProfileKey, profile)

		c.Next()
	}
}

// GetProviderID returns the provider profile id stored by RequireProviderProfile
func GetProviderID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(providerIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
