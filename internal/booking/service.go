// Package booking runs the customer booking workflow and admin decisions on
// top of the availability engine.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"venue-booking-backend/config"
	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/locker"
	"venue-booking-backend/internal/model"
	"venue-booking-backend/internal/policy"
	"venue-booking-backend/internal/store"
)

// Request is a booking as submitted by a customer, for creation or edit.
type Request struct {
	model.BookingCosmetics
	model.BookingLogistics
}

func (r Request) edit() policy.Edit {
	return policy.Edit{Cosmetics: r.BookingCosmetics, Logistics: r.BookingLogistics}
}

func requestOf(b model.Booking) Request {
	return Request{BookingCosmetics: b.BookingCosmetics, BookingLogistics: b.BookingLogistics}
}

// Outcome is the result of a write that went through conflict checking.
// Exactly one of Booking and Conflict is set.
type Outcome struct {
	Booking  *model.Booking         `json:"booking,omitempty"`
	Conflict *availability.Conflict `json:"conflict,omitempty"`
}

// Service coordinates validation, locking, conflict checks and persistence.
type Service struct {
	store    store.Store
	detector *availability.Detector
	policy   *policy.Policy
	acquirer *locker.Acquirer
	validate *validator.Validate
	rules    config.Rules
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a booking service.
func NewService(st store.Store, acquirer *locker.Acquirer, rules config.Rules, loc *time.Location, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		detector: availability.NewDetector(rules, loc),
		policy:   policy.New(rules, loc),
		acquirer: acquirer,
		validate: newValidator(),
		rules:    rules,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates a new booking request and stores it as pending unless it
// conflicts with the live calendar.
func (s *Service) Submit(ctx context.Context, customerID string, req Request) (*Outcome, error) {
	if err := s.validateRequest(req, s.now(), true); err != nil {
		return nil, err
	}

	b := &model.Booking{
		CustomerID:       customerID,
		BookingCosmetics: req.BookingCosmetics,
		BookingLogistics: req.BookingLogistics,
		Status:           model.BookingPending,
	}
	var conflict *availability.Conflict
	err := s.critical(ctx, []availability.Interval{{Start: b.StartAt, End: b.EndAt}}, func(tx store.Store) error {
		var err error
		if conflict, err = s.check(ctx, tx, b.StartAt, b.EndAt, 0); err != nil || conflict != nil {
			return err
		}
		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		s.logger.Info("Service.Submit rejected by conflict",
			zap.String("customer_id", customerID),
			zap.String("kind", string(conflict.Kind)),
		)
		return &Outcome{Conflict: conflict}, nil
	}

	s.logger.Info("Service.Submit booking created",
		zap.Int64("booking_id", b.ID),
		zap.String("customer_id", customerID),
		zap.Time("start_at", b.StartAt),
	)
	return &Outcome{Booking: b}, nil
}

// Edit applies a customer's change under the current edit decision. Fields
// the decision locks keep their stored values whatever req carries.
//
// The booking is read once to find the days to lock, then read again inside
// the locked transaction; the decision, validation and conflict check run on
// that second read. Status and approved_at are never written by an edit.
func (s *Service) Edit(ctx context.Context, customerID string, id int64, req Request) (*Outcome, error) {
	stored, err := s.owned(ctx, s.store, customerID, id)
	if err != nil {
		return nil, err
	}
	planned, _, err := s.planEdit(*stored, req)
	if err != nil {
		return nil, err
	}

	var (
		updated  model.Booking
		decision policy.Decision
		conflict *availability.Conflict
	)
	spans := []availability.Interval{
		{Start: stored.StartAt, End: stored.EndAt},
		{Start: planned.StartAt, End: planned.EndAt},
	}
	err = s.critical(ctx, spans, func(tx store.Store) error {
		current, err := s.owned(ctx, tx, customerID, id)
		if err != nil {
			return err
		}
		var moved bool
		updated, moved, err = s.planEdit(*current, req)
		if err != nil {
			return err
		}
		if !updated.StartAt.Equal(planned.StartAt) || !updated.EndAt.Equal(planned.EndAt) {
			return fmt.Errorf("%w: booking %d changed while it was being edited, please reload", ErrInvalidTransition, id)
		}
		decision = s.policy.Evaluate(*current, s.now())

		if moved {
			if conflict, err = s.check(ctx, tx, updated.StartAt, updated.EndAt, id); err != nil || conflict != nil {
				return err
			}
		}
		return tx.UpdateBookingDetails(ctx, &updated, current.Status)
	})
	if errors.Is(err, store.ErrStale) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &Outcome{Conflict: conflict}, nil
	}

	s.logger.Info("Service.Edit booking updated",
		zap.Int64("booking_id", id),
		zap.String("level", string(decision.EditLevel)),
		zap.Time("start_at", updated.StartAt),
		zap.Time("end_at", updated.EndAt),
	)
	return &Outcome{Booking: &updated}, nil
}

// planEdit applies req to b under b's edit decision and validates the result.
// Edits that keep the time range skip the advance-lead rule.
func (s *Service) planEdit(b model.Booking, req Request) (model.Booking, bool, error) {
	now := s.now()
	decision := s.policy.Evaluate(b, now)
	if !decision.CanEdit {
		return model.Booking{}, false, invalid(RuleEditLocked, decision.Message)
	}
	updated := decision.Apply(b, req.edit())
	moved := !updated.StartAt.Equal(b.StartAt) || !updated.EndAt.Equal(b.EndAt)
	if err := s.validateRequest(requestOf(updated), now, moved); err != nil {
		return model.Booking{}, false, err
	}
	return updated, moved, nil
}

// Cancel withdraws a pending or approved booking on the customer's behalf.
func (s *Service) Cancel(ctx context.Context, customerID string, id int64) (*model.Booking, error) {
	b, err := s.owned(ctx, s.store, customerID, id)
	if err != nil {
		return nil, err
	}
	if !b.HoldsVenue() {
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, b.Status)
	}
	if err := s.transition(ctx, s.store, id, model.BookingCancelled, nil, model.BookingPending, model.BookingApproved); err != nil {
		return nil, err
	}
	b.Status = model.BookingCancelled
	s.logger.Info("Service.Cancel booking cancelled", zap.Int64("booking_id", id))
	return b, nil
}

// Approve confirms a pending booking after re-checking it against every
// other engagement. approved_at is only set the first time.
func (s *Service) Approve(ctx context.Context, id int64) (*Outcome, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingPending {
		return nil, fmt.Errorf("%w: cannot approve a %s booking", ErrInvalidTransition, b.Status)
	}

	var conflict *availability.Conflict
	err = s.critical(ctx, []availability.Interval{{Start: b.StartAt, End: b.EndAt}}, func(tx store.Store) error {
		current, err := tx.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != model.BookingPending {
			return fmt.Errorf("%w: cannot approve a %s booking", ErrInvalidTransition, current.Status)
		}
		if conflict, err = s.check(ctx, tx, current.StartAt, current.EndAt, id); err != nil || conflict != nil {
			return err
		}

		approvedAt := current.ApprovedAt
		if approvedAt == nil {
			now := s.now()
			approvedAt = &now
		}
		if err := s.transition(ctx, tx, id, model.BookingApproved, approvedAt, model.BookingPending); err != nil {
			return err
		}
		current.Status, current.ApprovedAt = model.BookingApproved, approvedAt
		b = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return &Outcome{Conflict: conflict}, nil
	}
	s.logger.Info("Service.Approve booking approved", zap.Int64("booking_id", id))
	return &Outcome{Booking: b}, nil
}

// Reject declines a pending booking.
func (s *Service) Reject(ctx context.Context, id int64) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingPending {
		return nil, fmt.Errorf("%w: cannot reject a %s booking", ErrInvalidTransition, b.Status)
	}
	if err := s.transition(ctx, s.store, id, model.BookingRejected, nil, model.BookingPending); err != nil {
		return nil, err
	}
	b.Status = model.BookingRejected
	s.logger.Info("Service.Reject booking rejected", zap.Int64("booking_id", id))
	return b, nil
}

// transition moves a booking between statuses with a guarded write. A status
// that changed since it was read surfaces as ErrInvalidTransition.
func (s *Service) transition(ctx context.Context, st store.Store, id int64, to model.BookingStatus, approvedAt *time.Time, from ...model.BookingStatus) error {
	err := st.TransitionBooking(ctx, id, from, to, approvedAt)
	if errors.Is(err, store.ErrStale) {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}
	return err
}

// Get returns one of the customer's bookings with its current edit decision.
func (s *Service) Get(ctx context.Context, customerID string, id int64) (*model.Booking, policy.Decision, error) {
	b, err := s.owned(ctx, s.store, customerID, id)
	if err != nil {
		return nil, policy.Decision{}, err
	}
	return b, s.policy.Evaluate(*b, s.now()), nil
}

// List returns the customer's bookings, latest event first.
func (s *Service) List(ctx context.Context, customerID string) ([]model.Booking, error) {
	return s.store.ListCustomerBookings(ctx, customerID)
}

// owned loads a booking through st and hides it from customers who do not
// own it.
func (s *Service) owned(ctx context.Context, st store.Store, customerID string, id int64) (*model.Booking, error) {
	b, err := st.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, store.ErrNotFound
	}
	return b, nil
}

// critical runs fn in one transaction while holding the day locks of every
// span, so lock, fetch, check and write form a single critical section.
func (s *Service) critical(ctx context.Context, spans []availability.Interval, fn func(tx store.Store) error) error {
	release, err := s.acquirer.Acquire(ctx, s.lockKeys(spans))
	if err != nil {
		return fmt.Errorf("failed to lock calendar: %w", err)
	}
	defer release(context.WithoutCancel(ctx))

	return s.store.Transaction(ctx, fn)
}

// lockKeys returns the sorted, de-duplicated day keys of all spans.
func (s *Service) lockKeys(spans []availability.Interval) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, span := range spans {
		for _, k := range locker.DayKeys(span.Start, span.End, s.rules.MinGap, s.loc) {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// check fetches the engagements around [start, end) through tx and runs the
// conflict detector, ignoring the booking excludeID.
func (s *Service) check(ctx context.Context, tx store.Store, start, end time.Time, excludeID int64) (*availability.Conflict, error) {
	candidate := availability.Interval{Start: start, End: end}
	from, to := s.detector.LookupRange(candidate)
	engagements, err := tx.FetchEngagements(ctx, from, to, excludeID)
	if err != nil {
		return nil, err
	}
	return s.detector.Check(candidate, engagements), nil
}
