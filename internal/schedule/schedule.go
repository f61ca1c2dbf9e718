// Package schedule builds the public day-by-day venue calendar.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/model"
	"venue-booking-backend/internal/store"
)

// DefaultDays is the length of the upcoming schedule, today included.
const DefaultDays = 9

// MaxDays bounds a single schedule request.
const MaxDays = 62

// Kind says what governs a day.
type Kind string

const (
	KindEvent   Kind = "event"
	KindBooking Kind = "booking"
	KindRegular Kind = "regular"
	KindClosed  Kind = "closed"
)

// BookingSummary is the public view of an approved booking.
type BookingSummary struct {
	ID         int64           `json:"id"`
	EventTitle string          `json:"event_title"`
	EventType  model.EventType `json:"event_type"`
	StartAt    time.Time       `json:"start_at"`
	EndAt      time.Time       `json:"end_at"`
	TownOrCity string          `json:"town_or_city"`
}

// Day is one entry of the upcoming schedule.
type Day struct {
	Date    string                 `json:"date"`
	Weekday string                 `json:"weekday"`
	IsToday bool                   `json:"is_today"`
	Type    Kind                   `json:"type"`
	Event   *model.Event           `json:"event,omitempty"`
	Booking *BookingSummary        `json:"booking,omitempty"`
	Regular *model.RegularSchedule `json:"regular,omitempty"`
	Summary string                 `json:"summary,omitempty"`
}

// Source is the read access the schedule needs.
type Source interface {
	ListEvents(ctx context.Context, from, to time.Time, statuses ...model.EventStatus) ([]model.Event, error)
	ListBookings(ctx context.Context, from, to time.Time, statuses ...model.BookingStatus) ([]model.Booking, error)
	GetRegularSchedule(ctx context.Context) (*model.RegularSchedule, error)
}

// Service answers schedule queries.
type Service struct {
	source Source
	loc    *time.Location
	logger *zap.Logger
}

// NewService creates a schedule service that works on the venue's calendar.
func NewService(source Source, loc *time.Location, logger *zap.Logger) *Service {
	return &Service{source: source, loc: loc, logger: logger}
}

// Upcoming returns the governing item for each of the given number of days
// starting with the local day of from. Per day the priority is an active
// event, then an approved booking, then the regular schedule if it trades
// that weekday; otherwise the day is closed.
func (s *Service) Upcoming(ctx context.Context, from time.Time, days int) ([]Day, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}

	first := availability.DayStart(from, s.loc)
	end := first.AddDate(0, 0, days)

	events, err := s.source.ListEvents(ctx, first, end, model.EventActive)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	bookings, err := s.source.ListBookings(ctx, first, end, model.BookingApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	regular, err := s.source.GetRegularSchedule(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load regular schedule: %w", err)
	}

	out := make([]Day, 0, days)
	for i := 0; i < days; i++ {
		dayStart := first.AddDate(0, 0, i)
		window := availability.Interval{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}
		d := Day{
			Date:    dayStart.Format("2006-01-02"),
			Weekday: dayStart.Weekday().String(),
			IsToday: i == 0,
			Type:    KindClosed,
		}

		if e := firstEvent(events, window); e != nil {
			d.Type, d.Event, d.Summary = KindEvent, e, e.EventTitle
		} else if b := firstBooking(bookings, window); b != nil {
			d.Type = KindBooking
			d.Booking = &BookingSummary{
				ID:         b.ID,
				EventTitle: b.EventTitle,
				EventType:  b.EventType,
				StartAt:    b.StartAt,
				EndAt:      b.EndAt,
				TownOrCity: b.TownOrCity,
			}
			d.Summary = b.EventTitle
		} else if regular != nil && regular.IsOpenOn(dayStart.Weekday()) {
			d.Type, d.Regular, d.Summary = KindRegular, regular, regular.Summary()
		}
		out = append(out, d)
	}

	s.logger.Debug("Service.Upcoming",
		zap.String("from", first.Format("2006-01-02")),
		zap.Int("days", days),
		zap.Int("events", len(events)),
		zap.Int("bookings", len(bookings)),
	)
	return out, nil
}

func firstEvent(events []model.Event, window availability.Interval) *model.Event {
	for i := range events {
		if window.Overlaps(availability.Interval{Start: events[i].StartAt, End: events[i].EndAt}) {
			return &events[i]
		}
	}
	return nil
}

func firstBooking(bookings []model.Booking, window availability.Interval) *model.Booking {
	for i := range bookings {
		if window.Overlaps(availability.Interval{Start: bookings[i].StartAt, End: bookings[i].EndAt}) {
			return &bookings[i]
		}
	}
	return nil
}
