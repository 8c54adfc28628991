package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/pkg/validator"
)

// testUser simulates AuthMiddleware and, for providers, RequireProviderProfile
type testUser struct {
	id         uuid.UUID
	role       models.Role
	providerID uuid.UUID
}

func newTestRouter(user *testUser, environment string) (*gin.Engine, *logrus.Logger, *test.Hook) {
	gin.SetMode(gin.TestMode)
	validator.StrictJSONBinding()
	logger, hook := test.NewNullLogger()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(EnvironmentKey, environment)
		if user != nil {
			c.Set(middleware.UserContextKey, middleware.UserContext{UserID: user.id, Role: user.role})
			if user.providerID != uuid.Nil {
				c.Set("provider_id", user.providerID)
			}
		}
		c.Next()
	})
	return router, logger, hook
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handler-test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func traveler() *testUser {
	return &testUser{id: uuid.New(), role: models.RoleTraveler}
}

func provider() *testUser {
	return &testUser{id: uuid.New(), role: models.RoleProvider, providerID: uuid.New()}
}
