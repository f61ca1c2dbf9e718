package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegularSchedule_Summary(t *testing.T) {
	base := RegularSchedule{VenueName: "Naschmarkt", OpeningTime: "11:00", ClosingTime: "20:00"}

	testCases := []struct {
		name     string
		mutate   func(r *RegularSchedule)
		expected string
	}{
		{"closed", func(r *RegularSchedule) {}, "Naschmarkt - Closed 11:00 to 20:00"},
		{"single day", func(r *RegularSchedule) { r.Friday = true }, "Naschmarkt - Fri 11:00 to 20:00"},
		{"consecutive", func(r *RegularSchedule) {
			r.Tuesday, r.Wednesday, r.Thursday, r.Friday, r.Saturday = true, true, true, true, true
		}, "Naschmarkt - Tue - Sat 11:00 to 20:00"},
		{"gaps", func(r *RegularSchedule) { r.Monday, r.Wednesday, r.Sunday = true, true, true }, "Naschmarkt - Mon, Wed, Sun 11:00 to 20:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := base
			tc.mutate(&r)
			assert.Equal(t, tc.expected, r.Summary())
		})
	}
}

func TestRegularSchedule_IsOpenOn(t *testing.T) {
	r := RegularSchedule{Saturday: true, Sunday: true}
	assert.True(t, r.IsOpenOn(time.Saturday))
	assert.True(t, r.IsOpenOn(time.Sunday))
	assert.False(t, r.IsOpenOn(time.Monday))
}

func TestHoldsVenue(t *testing.T) {
	assert.True(t, Booking{Status: BookingPending}.HoldsVenue())
	assert.True(t, Booking{Status: BookingApproved}.HoldsVenue())
	assert.False(t, Booking{Status: BookingRejected}.HoldsVenue())
	assert.False(t, Booking{Status: BookingCancelled}.HoldsVenue())

	assert.True(t, Event{Status: EventActive}.HoldsVenue())
	assert.False(t, Event{Status: EventPostponed}.HoldsVenue())
	assert.True(t, Event{EventType: EventTypePrivate}.NeedsAddress())
	assert.False(t, Event{EventType: EventTypeClosure}.NeedsAddress())
}
