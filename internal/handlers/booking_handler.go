package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/internal/services"
)

// Bookings is the booking lifecycle API served by BookingHandler
type Bookings interface {
	CreateBooking(ctx context.Context, travelerID uuid.UUID, req *models.CreateBookingRequest, meta services.RequestMeta) (*models.BookingDetail, error)
	UpdateStatus(ctx context.Context, actor services.Actor, bookingID uuid.UUID, req *models.UpdateBookingStatusRequest, meta services.RequestMeta) (*models.BookingDetail, error)
	CancelBooking(ctx context.Context, travelerID, bookingID uuid.UUID, reason string, meta services.RequestMeta) (*models.BookingDetail, error)
	GetBooking(actor services.Actor, bookingID uuid.UUID) (*models.BookingDetail, error)
	ListTravelerBookings(travelerID uuid.UUID, filter models.BookingFilter) (*models.BookingList, error)
	ListProviderBookings(providerID uuid.UUID, filter models.BookingFilter) (*models.BookingList, error)
}

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookings Bookings
	logger   *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings Bookings, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), userCtx.UserID, &req, requestMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// UpdateStatus handles PUT /api/v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), actorFrom(c), bookingID, &req, requestMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	bookingID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// the body is optional
	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindingError(c, err)
		return
	}

	booking, err := h.bookings.CancelBooking(c.Request.Context(), userCtx.UserID, bookingID, req.Reason, requestMeta(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled successfully",
		"booking": booking,
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	booking, err := h.bookings.GetBooking(actorFrom(c), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListMyBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	filter, err := bookingFilterQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.bookings.ListTravelerBookings(userCtx.UserID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListProviderBookings handles GET /api/v1/provider/bookings
func (h *BookingHandler) ListProviderBookings(c *gin.Context) {
	providerID, err := providerIDFrom(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	filter, err := bookingFilterQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.bookings.ListProviderBookings(providerID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
