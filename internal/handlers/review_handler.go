package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
)

// Reviews is the review API served by ReviewHandler
type Reviews interface {
	CreateReview(ctx context.Context, userID, tripID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error)
	ListReviews(tripID uuid.UUID, page models.Pagination) (*models.ReviewList, error)
}

// ReviewHandler handles trip review HTTP requests
type ReviewHandler struct {
	reviews Reviews
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews Reviews, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// CreateReview handles POST /api/v1/trips/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	tripID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), userCtx.UserID, tripID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// ListReviews handles GET /api/v1/trips/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	tripID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	page, err := paginationQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	list, err := h.reviews.ListReviews(tripID, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
