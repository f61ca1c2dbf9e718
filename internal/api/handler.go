package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"venue-booking-backend/config"
	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/booking"
	"venue-booking-backend/internal/locker"
	"venue-booking-backend/internal/mw"
	"venue-booking-backend/internal/schedule"
	"venue-booking-backend/internal/store"
)

const (
	customerHeader = "X-Customer-ID"
	adminHeader    = "X-Admin-ID"

	customerKey = "customer_id"
	adminKey    = "admin_id"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	bookings *booking.Service
	slots    *availability.Calculator
	schedule *schedule.Service
	cache    *mw.ResponseCache
	rules    config.Rules
	venue    config.VenueConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	bookings *booking.Service,
	slots *availability.Calculator,
	sched *schedule.Service,
	responseCache *mw.ResponseCache,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		store:    s,
		bookings: bookings,
		slots:    slots,
		schedule: sched,
		cache:    responseCache,
		rules:    cfg.Rules,
		venue:    cfg.Venue,
		logger:   logger,
		now:      time.Now,
	}
}

// requireHeader aborts with 401 unless the upstream gateway set header.
func requireHeader(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := c.GetHeader(header)
		if v == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing " + header + " header"})
			return
		}
		c.Set(key, v)
		c.Next()
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// fail maps service errors to HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		status := http.StatusBadRequest
		if verr.Rule == booking.RuleEditLocked {
			status = http.StatusForbidden
		}
		c.AbortWithStatusJSON(status, gin.H{"success": false, "error": verr.Message, "rule": verr.Rule})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	case errors.Is(err, booking.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, locker.ErrNotAcquired):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "calendar is busy, please retry"})
	default:
		_ = c.Error(err)
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

// conflict writes a 409 carrying the guidance and the suggested window.
func conflict(c *gin.Context, cf *availability.Conflict) {
	c.JSON(http.StatusConflict, gin.H{"success": false, "error": cf.Message, "conflict": cf})
}
