package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmarket/marketplace-backend/internal/database"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/internal/utils"
	"github.com/tripmarket/marketplace-backend/pkg/jwt"
)

const testSecret = "test-secret-key-123456789"

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) GetUserByID(id uuid.UUID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

type stubProviders struct {
	profile *models.ProviderProfile
	err     error
}

func (s stubProviders) GetByUserID(uuid.UUID) (*models.ProviderProfile, error) {
	return s.profile, s.err
}

func setupTestRouter() (*gin.Engine, *logrus.Logger) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	return gin.New(), logger
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := jwt.NewService(testSecret, time.Hour)
	router, logger := setupTestRouter()

	user := &models.User{ID: uuid.New(), Email: "guide@example.com", Role: models.RoleProvider}
	token, _, err := jwtService.GenerateToken(user.ID, user.Email, string(models.RoleTraveler))
	require.NoError(t, err)

	router.GET("/protected", AuthMiddleware(jwtService, stubUsers{user.ID: user}, logger), func(c *gin.Context) {
		userCtx := MustGetUserContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userCtx.UserID, "role": userCtx.Role})
	})

	w := serve(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
	// role is reloaded from storage, not trusted from the token
	assert.Contains(t, w.Body.String(), `"role":"provider"`)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtService := jwt.NewService(testSecret, time.Hour)
	router, logger := setupTestRouter()

	known := &models.User{ID: uuid.New(), Email: "ana@example.com", Role: models.RoleTraveler}
	router.GET("/protected", AuthMiddleware(jwtService, stubUsers{known.ID: known}, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
	})

	expired := jwt.NewService(testSecret, -time.Minute)
	expiredToken, _, err := expired.GenerateToken(known.ID, known.Email, string(known.Role))
	require.NoError(t, err)

	foreign := jwt.NewService("another-secret", time.Hour)
	foreignToken, _, err := foreign.GenerateToken(known.ID, known.Email, string(known.Role))
	require.NoError(t, err)

	deletedToken, _, err := jwtService.GenerateToken(uuid.New(), "gone@example.com", "traveler")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"Missing Header", "", "MISSING_AUTH_HEADER"},
		{"Missing Bearer", "some-token", "INVALID_AUTH_FORMAT"},
		{"Wrong Prefix", "Basic some-token", "INVALID_AUTH_FORMAT"},
		{"Empty Bearer", "Bearer ", "INVALID_AUTH_FORMAT"},
		{"Expired", "Bearer " + expiredToken, "TOKEN_EXPIRED"},
		{"Wrong Secret", "Bearer " + foreignToken, "INVALID_TOKEN"},
		{"Garbage", "Bearer not.a.jwt", "INVALID_TOKEN"},
		{"Deleted User", "Bearer " + deletedToken, "USER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.NotContains(t, w.Body.String(), "should not reach here")
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewService(testSecret, time.Hour)
	router, logger := setupTestRouter()

	user := &models.User{ID: uuid.New(), Email: "guide@example.com", Role: models.RoleProvider}
	router.GET("/protected", OptionalAuthMiddleware(jwtService, stubUsers{user.ID: user}, logger), func(c *gin.Context) {
		if userCtx, ok := GetUserContext(c); ok {
			c.String(http.StatusOK, userCtx.UserID.String())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	token, _, err := jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	w := serve(router, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = serve(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID.String(), w.Body.String())

	w = serve(router, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		allowed    []models.Role
		wantStatus int
	}{
		{"Provider Allowed", models.RoleProvider, []models.Role{models.RoleProvider}, http.StatusOK},
		{"Traveler Rejected", models.RoleTraveler, []models.Role{models.RoleProvider}, http.StatusForbidden},
		{"Any Of Several", models.RoleTraveler, []models.Role{models.RoleProvider, models.RoleTraveler}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupTestRouter()
			router.GET("/protected", func(c *gin.Context) {
				c.Set(UserContextKey, UserContext{UserID: uuid.New(), Role: tt.role})
				c.Next()
			}, RequireRole(tt.allowed...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(router, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
			}
		})
	}

	t.Run("Without Auth Middleware", func(t *testing.T) {
		router, _ := setupTestRouter()
		router.GET("/protected", RequireRole(models.RoleProvider), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := serve(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
	})
}

func TestRequireProviderProfile(t *testing.T) {
	withUser := func(c *gin.Context) {
		c.Set(UserContextKey, UserContext{UserID: uuid.New(), Role: models.RoleProvider})
		c.Next()
	}

	t.Run("Stores Provider ID", func(t *testing.T) {
		router, logger := setupTestRouter()
		profile := &models.ProviderProfile{ID: uuid.New()}
		router.GET("/protected", withUser, RequireProviderProfile(stubProviders{profile: profile}, logger), func(c *gin.Context) {
			id, ok := GetProviderID(c)
			require.True(t, ok)
			c.String(http.StatusOK, id.String())
		})

		w := serve(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, profile.ID.String(), w.Body.String())
	})

	t.Run("No Profile", func(t *testing.T) {
		router, logger := setupTestRouter()
		router.GET("/protected", withUser, RequireProviderProfile(stubProviders{err: database.ErrNotFound}, logger), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := serve(router, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_PROVIDER")
	})

	t.Run("Storage Failure", func(t *testing.T) {
		router, logger := setupTestRouter()
		router.GET("/protected", withUser, RequireProviderProfile(stubProviders{err: errors.New("db down")}, logger), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := serve(router, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserContext(c)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGetUserContext(c) })

	c.Set(UserContextKey, "not a user context")
	_, ok = GetUserContext(c)
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, level := range map[string]logrus.Level{
		"/ok":      logrus.InfoLevel,
		"/missing": logrus.WarnLevel,
		"/boom":    logrus.ErrorLevel,
	} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path+"?page=2", nil))
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, level, entry.Level, path)
		assert.Equal(t, path, entry.Data["path"])
		assert.Equal(t, "page=2", entry.Data["query"])
	}
}

func TestClientIP(t *testing.T) {
	resolver, err := utils.NewProxyResolver([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	router, _ := setupTestRouter()
	router.Use(ClientIP(resolver))
	router.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, utils.GetRealIP(c)) })

	for name, tc := range map[string]struct {
		remote string
		want   string
	}{
		"Behind Proxy": {"10.0.0.2:443", "198.51.100.20"},
		"Spoofed":      {"203.0.113.9:5555", "203.0.113.9"},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.RemoteAddr = tc.remote
			req.Header.Set("X-Forwarded-For", "198.51.100.20")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}
