package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"venue-booking-backend/internal/booking"
	"venue-booking-backend/internal/model"
	"venue-booking-backend/internal/parse"
)

// bookingPayload is the wire form of a booking request. Times are accepted
// as RFC3339 or as venue-local "YYYY-MM-DDTHH:MM".
type bookingPayload struct {
	EventTitle    string          `json:"event_title"`
	Description   string          `json:"description"`
	EventPhoto    string          `json:"event_photo"`
	EventType     model.EventType `json:"event_type"`
	GuestCount    int             `json:"guest_count"`
	StartAt       string          `json:"start_at"`
	EndAt         string          `json:"end_at"`
	Message       string          `json:"message"`
	StreetAddress string          `json:"street_address"`
	Postcode      string          `json:"postcode"`
	TownOrCity    string          `json:"town_or_city"`
	Country       string          `json:"country"`
}

func (p bookingPayload) request(loc *time.Location) (booking.Request, error) {
	start, err := optionalDateTime(p.StartAt, loc)
	if err != nil {
		return booking.Request{}, err
	}
	end, err := optionalDateTime(p.EndAt, loc)
	if err != nil {
		return booking.Request{}, err
	}
	return booking.Request{
		BookingCosmetics: model.BookingCosmetics{
			EventTitle:  strings.TrimSpace(p.EventTitle),
			Description: p.Description,
			EventPhoto:  p.EventPhoto,
		},
		BookingLogistics: model.BookingLogistics{
			EventType:     p.EventType,
			GuestCount:    p.GuestCount,
			StartAt:       start,
			EndAt:         end,
			Message:       p.Message,
			StreetAddress: strings.TrimSpace(p.StreetAddress),
			Postcode:      strings.TrimSpace(p.Postcode),
			TownOrCity:    strings.TrimSpace(p.TownOrCity),
			Country:       strings.ToUpper(strings.TrimSpace(p.Country)),
		},
	}, nil
}

// optionalDateTime leaves a missing value zero so the required-field check
// reports it.
func optionalDateTime(raw string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parse.DateTime(raw, loc)
}

func (h *Handler) bindBooking(c *gin.Context) (booking.Request, bool) {
	var p bookingPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "Invalid request body")
		return booking.Request{}, false
	}
	req, err := p.request(h.venue.Location)
	if err != nil {
		badRequest(c, err.Error())
		return booking.Request{}, false
	}
	return req, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := parse.ID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	return id, true
}

func (h *Handler) respondOutcome(c *gin.Context, status int, outcome *booking.Outcome) {
	if outcome.Conflict != nil {
		conflict(c, outcome.Conflict)
		return
	}
	c.JSON(status, gin.H{"success": true, "booking": outcome.Booking})
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}
	outcome, err := h.bookings.Submit(c.Request.Context(), c.GetString(customerKey), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondOutcome(c, http.StatusCreated, outcome)
}

// ListBookings handles GET /api/bookings.
func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.List(c.Request.Context(), c.GetString(customerKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// GetBooking handles GET /api/bookings/:id. The response carries the
// current edit permission so clients can lock fields up front.
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, decision, err := h.bookings.Get(c.Request.Context(), c.GetString(customerKey), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b, "edit": decision})
}

// UpdateBooking handles PUT /api/bookings/:id.
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}
	outcome, err := h.bookings.Edit(c.Request.Context(), c.GetString(customerKey), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondOutcome(c, http.StatusOK, outcome)
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Cancel(c.Request.Context(), c.GetString(customerKey), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// ApproveBooking handles POST /api/admin/bookings/:id/approve. Approval
// re-checks the calendar, so it can still answer with a conflict.
func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	outcome, err := h.bookings.Approve(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondOutcome(c, http.StatusOK, outcome)
}

// RejectBooking handles POST /api/admin/bookings/:id/reject.
func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Reject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}
