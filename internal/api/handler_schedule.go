package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"venue-booking-backend/internal/model"
	"venue-booking-backend/internal/parse"
	"venue-booking-backend/internal/schedule"
)

// regularSchedulePath is also the cache key of the public schedule response.
const regularSchedulePath = "/api/regular-schedule"

// GetSchedule handles GET /api/schedule?days=N.
func (h *Handler) GetSchedule(c *gin.Context) {
	days := schedule.DefaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > schedule.MaxDays {
			badRequest(c, fmt.Sprintf("days must be between 1 and %d", schedule.MaxDays))
			return
		}
		days = n
	}

	out, err := h.schedule.Upcoming(c.Request.Context(), h.now(), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "venue": h.venue.Name, "days": out})
}

// GetRegularSchedule handles GET /api/regular-schedule.
func (h *Handler) GetRegularSchedule(c *gin.Context) {
	rs, err := h.store.GetRegularSchedule(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "regular_schedule": rs, "summary": rs.Summary()})
}

type regularSchedulePayload struct {
	VenueName     string `json:"venue_name" binding:"required"`
	StreetAddress string `json:"street_address" binding:"required"`
	Postcode      string `json:"postcode"`
	TownOrCity    string `json:"town_or_city" binding:"required"`
	Country       string `json:"country"`
	Monday        bool   `json:"monday"`
	Tuesday       bool   `json:"tuesday"`
	Wednesday     bool   `json:"wednesday"`
	Thursday      bool   `json:"thursday"`
	Friday        bool   `json:"friday"`
	Saturday      bool   `json:"saturday"`
	Sunday        bool   `json:"sunday"`
	OpeningTime   string `json:"opening_time" binding:"required"`
	ClosingTime   string `json:"closing_time" binding:"required"`
}

// PutRegularSchedule handles PUT /api/admin/regular-schedule. The previous
// schedule is deactivated and the cached public copy dropped.
func (h *Handler) PutRegularSchedule(c *gin.Context) {
	var p regularSchedulePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "venue_name, street_address, town_or_city, opening_time and closing_time are required")
		return
	}
	opening, err := parse.Clock(p.OpeningTime)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	closing, err := parse.Clock(p.ClosingTime)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	rs := &model.RegularSchedule{
		VenueName:     strings.TrimSpace(p.VenueName),
		StreetAddress: strings.TrimSpace(p.StreetAddress),
		Postcode:      strings.TrimSpace(p.Postcode),
		TownOrCity:    strings.TrimSpace(p.TownOrCity),
		Country:       strings.ToUpper(strings.TrimSpace(p.Country)),
		Monday:        p.Monday,
		Tuesday:       p.Tuesday,
		Wednesday:     p.Wednesday,
		Thursday:      p.Thursday,
		Friday:        p.Friday,
		Saturday:      p.Saturday,
		Sunday:        p.Sunday,
		OpeningTime:   opening,
		ClosingTime:   closing,
	}
	if err := h.store.ReplaceRegularSchedule(c.Request.Context(), rs); err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate(regularSchedulePath)

	c.JSON(http.StatusOK, gin.H{"success": true, "regular_schedule": rs, "summary": rs.Summary()})
}

// GetRules handles GET /api/rules.
func (h *Handler) GetRules(c *gin.Context) {
	r := h.rules
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"timezone":           h.venue.Location.String(),
		"min_advance_days":   r.MinAdvanceDays,
		"min_gap_hours":      r.MinGapHours,
		"min_guests":         r.MinGuests,
		"full_edit_days":     r.FullEditDays,
		"cosmetic_edit_days": r.CosmeticEditDays,
		"min_slot_minutes":   r.MinSlotMinutes,
	})
}
