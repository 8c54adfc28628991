package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// Catalog is the trip listing API served by TripHandler
type Catalog interface {
	CreateTrip(providerID uuid.UUID, req *models.CreateTripRequest) (*models.TripDetail, error)
	UpdateTrip(providerID, tripID uuid.UUID, req *models.UpdateTripRequest) (*models.Trip, error)
	ListTrips(viewerID uuid.UUID, filter models.TripFilter) (*models.TripList, error)
	GetTrip(tripID uuid.UUID) (*models.TripDetail, error)
	ListProviderTrips(providerID uuid.UUID) ([]models.ProviderTrip, error)
}

// Scheduler is the trip date API served by TripHandler
type Scheduler interface {
	AddDates(providerID, tripID uuid.UUID, req *models.AddDatesRequest) ([]models.TripDate, error)
	ListDates(tripID uuid.UUID) ([]models.TripDate, error)
}

// TripHandler handles catalog and availability HTTP requests
type TripHandler struct {
	catalog   Catalog
	scheduler Scheduler
	logger    *logrus.Logger
}

// NewTripHandler creates a new trip handler
func NewTripHandler(catalog Catalog, scheduler Scheduler, logger *logrus.Logger) *TripHandler {
	return &TripHandler{catalog: catalog, scheduler: scheduler, logger: logger}
}

// CreateTrip handles POST /api/v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	providerID, err := providerIDFrom(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	trip, err := h.catalog.CreateTrip(providerID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// UpdateTrip handles PUT /api/v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	providerID, err := providerIDFrom(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	tripID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	trip, err := h.catalog.UpdateTrip(providerID, tripID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// ListTrips handles GET /api/v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	filter, err := tripFilterQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var viewerID uuid.UUID
	if userCtx, ok := middleware.GetUserContext(c); ok {
		viewerID = userCtx.UserID
	}

	list, err := h.catalog.ListTrips(viewerID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetTrip handles GET /api/v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	trip, err := h.catalog.GetTrip(tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trip)
}

// ListProviderTrips handles GET /api/v1/provider/trips
func (h *TripHandler) ListProviderTrips(c *gin.Context) {
	providerID, err := providerIDFrom(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	trips, err := h.catalog.ListProviderTrips(providerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": trips, "total": len(trips)})
}

// AddDates handles POST /api/v1/trips/:id/dates
func (h *TripHandler) AddDates(c *gin.Context) {
	providerID, err := providerIDFrom(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	tripID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.AddDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	dates, err := h.scheduler.AddDates(providerID, tripID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"dates": dates})
}

// ListDates handles GET /api/v1/trips/:id/dates
func (h *TripHandler) ListDates(c *gin.Context) {
	tripID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	dates, err := h.scheduler.ListDates(tripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dates": dates})
}
