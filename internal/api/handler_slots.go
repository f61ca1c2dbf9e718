package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/parse"
)

// GetSlots handles GET /api/slots/:date?exclude=<booking id>.
func (h *Handler) GetSlots(c *gin.Context) {
	loc := h.venue.Location
	day, err := parse.Date(c.Param("date"), loc)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var exclude int64
	if raw := c.Query("exclude"); raw != "" {
		if exclude, err = parse.ID(raw); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	if availability.DaysBetween(h.now(), day, loc) < h.rules.MinAdvanceDays {
		badRequest(c, fmt.Sprintf("Bookings must be made at least %d days in advance.", h.rules.MinAdvanceDays))
		return
	}

	slots, err := h.slots.AvailableSlots(c.Request.Context(), day, exclude)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"date":             day.Format("2006-01-02"),
		"slots":            availability.FormatForDisplay(slots, loc),
		"has_availability": len(slots) > 0,
	})
}
