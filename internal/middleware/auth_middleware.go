package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/internal/utils"
	"github.com/tripmarket/marketplace-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// UserLoader loads the current state of an account
type UserLoader interface {
	GetUserByID(id uuid.UUID) (*models.User, error)
}

// AuthMiddleware validates the bearer token and reloads the user it names.
// Role comes from storage, not from the token, so a changed role takes effect immediately.
func AuthMiddleware(jwtService *jwt.Service, users UserLoader, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithFields(logrus.Fields{"path": c.Request.URL.Path, "ip": utils.GetRealIP(c)})

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("Auth failed: missing authorization header")
			abort(c, http.StatusUnauthorized, "unauthorized", "MISSING_AUTH_HEADER", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			log.Debug("Auth failed: invalid authorization format")
			abort(c, http.StatusUnauthorized, "unauthorized", "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				log.Debug("Auth failed: token expired")
				abort(c, http.StatusUnauthorized, "token_expired", "TOKEN_EXPIRED", "Session token has expired. Please log in again.")
				return
			}
			log.WithError(err).Info("Auth failed: invalid token")
			abort(c, http.StatusUnauthorized, "invalid_token", "INVALID_TOKEN", "Invalid session token")
			return
		}

		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				log.WithField("user_id", claims.UserID).Info("Auth failed: user no longer exists")
				abort(c, http.StatusUnauthorized, "unauthorized", "USER_NOT_FOUND", "User account not found")
				return
			}
			log.WithError(err).Error("Auth failed: could not load user")
			abort(c, http.StatusInternalServerError, "unexpected", "INTERNAL_ERROR", "An unexpected error occurred")
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})

		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through and authenticates the rest
// exactly like AuthMiddleware, so a bad token is still rejected.
func OptionalAuthMiddleware(jwtService *jwt.Service, users UserLoader, logger *logrus.Logger) gin.HandlerFunc {
	authenticate := AuthMiddleware(jwtService, users, logger)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c)
	}
}

// RequireRole rejects users whose role is not one of roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			abort(c, http.StatusUnauthorized, "unauthorized", "MISSING_USER_CONTEXT", "User context not found. Auth middleware may not be applied.")
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden, "forbidden", "INSUFFICIENT_PERMISSIONS", "You don't have permission to access this resource")
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}

func abort(c *gin.Context, status int, kind, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   kind,
		"message": message,
		"code":    code,
	})
}
