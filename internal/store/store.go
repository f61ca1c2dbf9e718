package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrStale is returned by guarded writes when the record no longer has the
// status the caller read.
var ErrStale = errors.New("record changed concurrently")

// bookingDetailColumns are the customer-editable columns. Status and
// approved_at only change through TransitionBooking.
var bookingDetailColumns = []string{
	"event_title", "description", "event_photo",
	"event_type", "guest_count", "start_at", "end_at", "message",
	"street_address", "postcode", "town_or_city", "country",
	"updated_at",
}

// Store defines the interface for all database operations.
type Store interface {
	availability.Source

	CreateBooking(ctx context.Context, b *model.Booking) error
	// UpdateBookingDetails writes the customer-editable fields of b, provided
	// the stored row still has status expected. Otherwise it returns ErrStale.
	UpdateBookingDetails(ctx context.Context, b *model.Booking, expected model.BookingStatus) error
	// TransitionBooking moves a booking to status to if its current status is
	// one of from, returning ErrStale otherwise. approvedAt is written when set.
	TransitionBooking(ctx context.Context, id int64, from []model.BookingStatus, to model.BookingStatus, approvedAt *time.Time) error
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]model.Booking, error)
	ListBookings(ctx context.Context, from, to time.Time, statuses ...model.BookingStatus) ([]model.Booking, error)

	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	UpdateEventStatus(ctx context.Context, id int64, status model.EventStatus) error
	ListEvents(ctx context.Context, from, to time.Time, statuses ...model.EventStatus) ([]model.Event, error)

	GetRegularSchedule(ctx context.Context) (*model.RegularSchedule, error)
	ReplaceRegularSchedule(ctx context.Context, rs *model.RegularSchedule) error

	// Transaction runs fn against a store bound to a single database
	// transaction. fn's error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// FetchEngagements loads pending and approved bookings plus active events
// whose span touches [from, to+1 day). Spans that start before the range
// and end inside or after it are included.
func (s *gormStore) FetchEngagements(ctx context.Context, from, to time.Time, excludeBookingID int64) ([]availability.Engagement, error) {
	rangeStart, rangeEnd := from.UTC(), to.AddDate(0, 0, 1).UTC()

	var bookings []model.Booking
	q := s.db.WithContext(ctx).
		Where("status IN ?", []model.BookingStatus{model.BookingPending, model.BookingApproved}).
		Where("start_at < ? AND end_at >= ?", rangeEnd, rangeStart)
	if excludeBookingID > 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	var events []model.Event
	if err := s.db.WithContext(ctx).
		Where("status = ?", model.EventActive).
		Where("start_at < ? AND end_at >= ?", rangeEnd, rangeStart).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	engagements := make([]availability.Engagement, 0, len(bookings)+len(events))
	for _, b := range bookings {
		engagements = append(engagements, availability.FromBooking(b))
	}
	for _, e := range events {
		engagements = append(engagements, availability.FromEvent(e))
	}
	sort.SliceStable(engagements, func(i, j int) bool {
		return engagements[i].Start.Before(engagements[j].Start)
	})
	return engagements, nil
}

// --- Bookings ---

func (s *gormStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	normalizeBooking(b)
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (s *gormStore) UpdateBookingDetails(ctx context.Context, b *model.Booking, expected model.BookingStatus) error {
	normalizeBooking(b)
	res := s.db.WithContext(ctx).
		Model(b).
		Where("status = ?", expected).
		Select(bookingDetailColumns).
		Updates(b)
	if res.Error != nil {
		return fmt.Errorf("failed to update booking %d: %w", b.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %d is no longer %s: %w", b.ID, expected, ErrStale)
	}
	return nil
}

func (s *gormStore) TransitionBooking(ctx context.Context, id int64, from []model.BookingStatus, to model.BookingStatus, approvedAt *time.Time) error {
	values := map[string]any{"status": to, "updated_at": time.Now().UTC()}
	if approvedAt != nil {
		values["approved_at"] = approvedAt.UTC()
	}
	res := s.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to set booking %d to %s: %w", id, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking %d cannot move to %s: %w", id, to, ErrStale)
	}
	return nil
}

func (s *gormStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var b model.Booking
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return &b, nil
}

func (s *gormStore) ListCustomerBookings(ctx context.Context, customerID string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("start_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings for customer %q: %w", customerID, err)
	}
	return bookings, nil
}

// ListBookings returns bookings overlapping [from, to), oldest first. No
// statuses means any status.
func (s *gormStore) ListBookings(ctx context.Context, from, to time.Time, statuses ...model.BookingStatus) ([]model.Booking, error) {
	var bookings []model.Booking
	q := s.db.WithContext(ctx).Where("start_at < ? AND end_at > ?", to.UTC(), from.UTC())
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("start_at").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// --- Events ---

func (s *gormStore) CreateEvent(ctx context.Context, e *model.Event) error {
	e.StartAt, e.EndAt = e.StartAt.UTC(), e.EndAt.UTC()
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *gormStore) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &e, nil
}

func (s *gormStore) UpdateEventStatus(ctx context.Context, id int64, status model.EventStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of event %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEvents returns events overlapping [from, to), oldest first. No
// statuses means any status.
func (s *gormStore) ListEvents(ctx context.Context, from, to time.Time, statuses ...model.EventStatus) ([]model.Event, error) {
	var events []model.Event
	q := s.db.WithContext(ctx).Where("start_at < ? AND end_at > ?", to.UTC(), from.UTC())
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("start_at").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// --- Regular schedule ---

func (s *gormStore) GetRegularSchedule(ctx context.Context) (*model.RegularSchedule, error) {
	var rs model.RegularSchedule
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&rs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get regular schedule: %w", err)
	}
	return &rs, nil
}

// ReplaceRegularSchedule deactivates the current schedule and stores rs as
// the only active one.
func (s *gormStore) ReplaceRegularSchedule(ctx context.Context, rs *model.RegularSchedule) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.RegularSchedule{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate regular schedule: %w", err)
		}
		rs.ID = 0
		rs.IsActive = true
		if err := tx.Create(rs).Error; err != nil {
			return fmt.Errorf("failed to create regular schedule: %w", err)
		}
		return nil
	})
}

// normalizeBooking stores instants in UTC so range comparisons behave the
// same on every driver.
func normalizeBooking(b *model.Booking) {
	b.StartAt, b.EndAt = b.StartAt.UTC(), b.EndAt.UTC()
	if b.ApprovedAt != nil {
		t := b.ApprovedAt.UTC()
		b.ApprovedAt = &t
	}
}
