package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/model"
)

// CreateEvent stores an admin event. Admin events take precedence over
// bookings, so no conflict check is made; overlaps are logged.
func (s *Service) CreateEvent(ctx context.Context, adminID string, e model.Event) (*model.Event, error) {
	e.ID = 0
	e.AdminID = adminID
	if e.Status == "" {
		e.Status = model.EventActive
	}
	if err := s.validateEvent(e); err != nil {
		return nil, err
	}

	if err := s.store.CreateEvent(ctx, &e); err != nil {
		return nil, err
	}

	if e.HoldsVenue() {
		candidate := availability.Interval{Start: e.StartAt, End: e.EndAt}
		from, to := s.detector.LookupRange(candidate)
		if engagements, err := s.store.FetchEngagements(ctx, from, to, 0); err == nil {
			if c := s.detector.Check(candidate, withoutEvent(engagements, e.ID)); c != nil {
				s.logger.Warn("Service.CreateEvent overlaps existing engagements",
					zap.Int64("event_id", e.ID),
					zap.Int("before", len(c.Before)),
					zap.Int("after", len(c.After)),
				)
			}
		}
	}

	s.logger.Info("Service.CreateEvent event created",
		zap.Int64("event_id", e.ID),
		zap.String("type", string(e.EventType)),
		zap.Time("start_at", e.StartAt),
	)
	return &e, nil
}

// SetEventStatus moves an event between active, postponed and cancelled.
func (s *Service) SetEventStatus(ctx context.Context, id int64, status model.EventStatus) (*model.Event, error) {
	switch status {
	case model.EventActive, model.EventPostponed, model.EventCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown event status %q", ErrInvalidTransition, status)
	}
	if err := s.store.UpdateEventStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.logger.Info("Service.SetEventStatus", zap.Int64("event_id", id), zap.String("status", string(status)))
	return s.store.GetEvent(ctx, id)
}

// ListEvents returns the events overlapping [from, to) that are not cancelled.
func (s *Service) ListEvents(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	return s.store.ListEvents(ctx, from, to, model.EventActive, model.EventPostponed)
}

func withoutEvent(engagements []availability.Engagement, id int64) []availability.Engagement {
	out := make([]availability.Engagement, 0, len(engagements))
	for _, e := range engagements {
		if e.Kind == availability.KindEvent && e.ID == id {
			continue
		}
		out = append(out, e)
	}
	return out
}
