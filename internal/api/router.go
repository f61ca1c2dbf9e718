package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"venue-booking-backend/config"
	"venue-booking-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(mw.RequestID(), mw.AccessLog(logger), gin.Recovery())

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := h.cache.Middleware()

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rules", caching, h.GetRules)
		api.GET("/regular-schedule", caching, h.GetRegularSchedule)
		api.GET("/schedule", h.GetSchedule)
		api.GET("/events", h.ListEvents)
		api.GET("/slots/:date", h.GetSlots)

		customer := api.Group("/bookings", requireHeader(customerHeader, customerKey))
		{
			customer.POST("", h.CreateBooking)
			customer.GET("", h.ListBookings)
			customer.GET("/:id", h.GetBooking)
			customer.PUT("/:id", h.UpdateBooking)
			customer.POST("/:id/cancel", h.CancelBooking)
		}

		admin := api.Group("/admin", requireHeader(adminHeader, adminKey))
		{
			admin.POST("/bookings/:id/approve", h.ApproveBooking)
			admin.POST("/bookings/:id/reject", h.RejectBooking)
			admin.POST("/events", h.CreateEvent)
			admin.PATCH("/events/:id/status", h.SetEventStatus)
			admin.PUT("/regular-schedule", h.PutRegularSchedule)
		}
	}

	return r
}
