package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// Providers is the provider self-service and directory API served by ProviderHandler
type Providers interface {
	GetProfile(userID uuid.UUID) (*models.ProviderProfile, error)
	UpdateProfile(userID uuid.UUID, req *models.UpdateProviderProfileRequest) (*models.ProviderProfile, error)
	GetStats(providerID uuid.UUID) (*models.ProviderStats, error)
	GetPublicProfile(providerID uuid.UUID) (*models.PublicProvider, error)
	ListProviders(filter models.ProviderFilter) (*models.ProviderList, error)
}

// ProviderHandler handles provider profile HTTP requests
type ProviderHandler struct {
	providers Providers
	logger    *logrus.Logger
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(providers Providers, logger *logrus.Logger) *ProviderHandler {
	return &ProviderHandler{providers: providers, logger: logger}
}

// GetProfile handles GET /api/v1/provider/profile
func (h *ProviderHandler) GetProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	profile, err := h.providers.GetProfile(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/provider/profile
func (h *ProviderHandler) UpdateProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateProviderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	profile, err := h.providers.UpdateProfile(userCtx.UserID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetStats handles GET /api/v1/provider/stats
func (h *ProviderHandler) GetStats(c *gin.Context) {
	providerID, err := providerIDFrom(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.providers.GetStats(providerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListProviders handles GET /api/v1/providers
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	page, err := paginationQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.providers.ListProviders(models.ProviderFilter{
		Location:   c.Query("location"),
		Expertise:  c.Query("expertise"),
		Pagination: page,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetPublicProfile handles GET /api/v1/providers/:id
func (h *ProviderHandler) GetPublicProfile(c *gin.Context) {
	providerID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	provider, err := h.providers.GetPublicProfile(providerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider": provider})
}
