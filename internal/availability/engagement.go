package availability

import (
	"context"
	"time"

	"venue-booking-backend/internal/model"
)

// Kind identifies which record an engagement was taken from.
type Kind string

const (
	KindBooking Kind = "booking"
	KindEvent   Kind = "event"
)

// Interval is a span of time. End is exclusive.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the half-open intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Engagement is a span during which the venue is committed, taken from either
// a booking or an admin event. Engine code only looks at Start and End.
type Engagement struct {
	Kind  Kind      `json:"kind"`
	ID    int64     `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FromBooking converts a booking into an engagement.
func FromBooking(b model.Booking) Engagement {
	return Engagement{Kind: KindBooking, ID: b.ID, Start: b.StartAt, End: b.EndAt}
}

// FromEvent converts an admin event into an engagement.
func FromEvent(e model.Event) Engagement {
	return Engagement{Kind: KindEvent, ID: e.ID, Start: e.StartAt, End: e.EndAt}
}

// Span returns the engagement's occupied interval.
func (e Engagement) Span() Interval {
	return Interval{Start: e.Start, End: e.End}
}

// Blocked returns the engagement expanded by gap on both sides.
func (e Engagement) Blocked(gap time.Duration) Interval {
	return Interval{Start: e.Start.Add(-gap), End: e.End.Add(gap)}
}

// Source supplies the engagements that hold venue time.
type Source interface {
	// FetchEngagements returns every pending or approved booking and every
	// active event whose span touches the local calendar days from..to
	// (both inclusive, given as day starts), ordered by start. A positive
	// excludeBookingID drops that booking by identity.
	FetchEngagements(ctx context.Context, from, to time.Time, excludeBookingID int64) ([]Engagement, error)
}
