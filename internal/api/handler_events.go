package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"venue-booking-backend/internal/model"
	"venue-booking-backend/internal/parse"
)

// defaultEventRange is used when GET /api/events has no explicit "to".
const defaultEventRange = 30 * 24 * time.Hour

type eventPayload struct {
	EventTitle    string            `json:"event_title"`
	EventType     model.EventType   `json:"event_type"`
	StartAt       string            `json:"start_at"`
	EndAt         string            `json:"end_at"`
	StreetAddress string            `json:"street_address"`
	Postcode      string            `json:"postcode"`
	TownOrCity    string            `json:"town_or_city"`
	Country       string            `json:"country"`
	Description   string            `json:"description"`
	Message       string            `json:"message"`
	Status        model.EventStatus `json:"status"`
	EventPhoto    string            `json:"event_photo"`
}

func (p eventPayload) event(loc *time.Location) (model.Event, error) {
	start, err := optionalDateTime(p.StartAt, loc)
	if err != nil {
		return model.Event{}, err
	}
	end, err := optionalDateTime(p.EndAt, loc)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		EventTitle:    strings.TrimSpace(p.EventTitle),
		EventType:     p.EventType,
		StartAt:       start,
		EndAt:         end,
		StreetAddress: strings.TrimSpace(p.StreetAddress),
		Postcode:      strings.TrimSpace(p.Postcode),
		TownOrCity:    strings.TrimSpace(p.TownOrCity),
		Country:       strings.ToUpper(strings.TrimSpace(p.Country)),
		Description:   p.Description,
		Message:       p.Message,
		Status:        p.Status,
		EventPhoto:    p.EventPhoto,
	}, nil
}

// CreateEvent handles POST /api/admin/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	var p eventPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	e, err := p.event(h.venue.Location)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.bookings.CreateEvent(c.Request.Context(), c.GetString(adminKey), e)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "event": created})
}

// SetEventStatus handles PATCH /api/admin/events/:id/status.
func (h *Handler) SetEventStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Status model.EventStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "status is required")
		return
	}

	e, err := h.bookings.SetEventStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "event": e})
}

// ListEvents handles GET /api/events?from=YYYY-MM-DD&to=YYYY-MM-DD. The
// range is half-open and defaults to the next thirty days.
func (h *Handler) ListEvents(c *gin.Context) {
	loc := h.venue.Location
	from := h.now().In(loc)
	if raw := c.Query("from"); raw != "" {
		d, err := parse.Date(raw, loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		from = d
	}
	to := from.Add(defaultEventRange)
	if raw := c.Query("to"); raw != "" {
		d, err := parse.Date(raw, loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		to = d
	}
	if !to.After(from) {
		badRequest(c, "'to' must be after 'from'")
		return
	}

	events, err := h.bookings.ListEvents(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}
