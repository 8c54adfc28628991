package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tripmarket/marketplace-backend/internal/apperror"
	"github.com/tripmarket/marketplace-backend/internal/middleware"
	"github.com/tripmarket/marketplace-backend/internal/models"
	"github.com/tripmarket/marketplace-backend/internal/services"
	"github.com/tripmarket/marketplace-backend/internal/utils"
)

// requestMeta collects the client details recorded in the audit log
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

func actorFrom(c *gin.Context) services.Actor {
	userCtx := middleware.MustGetUserContext(c)
	return services.Actor{UserID: userCtx.UserID, Role: userCtx.Role}
}

// providerIDFrom returns the profile id stored by RequireProviderProfile
func providerIDFrom(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.GetProviderID(c)
	if !ok {
		return uuid.Nil, apperror.Forbidden("NOT_PROVIDER", "Provider account not found")
	}
	return id, nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("INVALID_ID", fmt.Sprintf("%s must be a valid UUID", name))
	}
	return id, nil
}

func paginationQuery(c *gin.Context) (models.Pagination, error) {
	page, err := intQuery(c, "page")
	if err != nil {
		return models.Pagination{}, err
	}
	if page > models.MaxPage {
		return models.Pagination{}, apperror.Validation("INVALID_QUERY", fmt.Sprintf("page cannot exceed %d", models.MaxPage))
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return models.Pagination{}, err
	}
	return models.NewPagination(page, limit), nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("INVALID_QUERY", name+" must be an integer")
	}
	return n, nil
}

func decimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, apperror.Validation("INVALID_QUERY", name+" must be a non-negative number")
	}
	return &d, nil
}

// dateQuery accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.Validation("INVALID_QUERY", name+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

func tripFilterQuery(c *gin.Context) (models.TripFilter, error) {
	filter := models.TripFilter{
		Destination:  c.Query("destination"),
		ActivityType: c.Query("activity_type"),
		Status:       models.TripStatus(c.Query("status")),
	}

	var err error
	if filter.Pagination, err = paginationQuery(c); err != nil {
		return filter, err
	}
	if filter.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = dateQuery(c, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = dateQuery(c, "end_date"); err != nil {
		return filter, err
	}
	if raw := c.Query("provider_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperror.Validation("INVALID_QUERY", "provider_id must be a valid UUID")
		}
		filter.ProviderID = &id
	}
	return filter, nil
}

func bookingFilterQuery(c *gin.Context) (models.BookingFilter, error) {
	page, err := paginationQuery(c)
	if err != nil {
		return models.BookingFilter{}, err
	}
	return models.BookingFilter{Status: models.BookingStatus(c.Query("status")), Pagination: page}, nil
}
