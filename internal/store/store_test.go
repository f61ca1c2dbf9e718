package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore opens a private in-memory database per test.
func newSQLiteStore(t *testing.T) Store {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Booking{}, &model.Event{}, &model.RegularSchedule{}))
	return NewGormStore(db)
}

var day = time.Date(2027, 6, 12, 0, 0, 0, 0, time.UTC)

func at(dayOffset, hour int) time.Time {
	return day.AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)
}

func newBooking(customer string, start, end time.Time, status model.BookingStatus) *model.Booking {
	return &model.Booking{
		CustomerID:       customer,
		BookingCosmetics: model.BookingCosmetics{EventTitle: "Party"},
		BookingLogistics: model.BookingLogistics{
			EventType:     model.EventTypePrivate,
			GuestCount:    80,
			StartAt:       start,
			EndAt:         end,
			StreetAddress: "Ring 1",
			Postcode:      "1010",
		},
		Status: status,
	}
}

func newEvent(start, end time.Time, status model.EventStatus) *model.Event {
	return &model.Event{
		AdminID:     "admin",
		EventTitle:  "Market",
		EventType:   model.EventTypeClosure,
		StartAt:     start,
		EndAt:       end,
		Description: "Closed",
		Status:      status,
	}
}

func TestGormStore_FetchEngagements(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	pending := newBooking("c1", at(0, 10), at(0, 14), model.BookingPending)
	approved := newBooking("c2", at(1, 18), at(2, 2), model.BookingApproved)
	rejected := newBooking("c3", at(0, 16), at(0, 18), model.BookingRejected)
	cancelled := newBooking("c4", at(0, 19), at(0, 21), model.BookingCancelled)
	outside := newBooking("c5", at(5, 10), at(5, 12), model.BookingPending)
	// Starts two days before the range and runs into it.
	longRunning := newBooking("c6", at(-3, 12), at(-1, 2), model.BookingApproved)
	for _, b := range []*model.Booking{pending, approved, rejected, cancelled, outside, longRunning} {
		require.NoError(t, s.CreateBooking(ctx, b))
	}

	active := newEvent(at(0, 6), at(0, 8), model.EventActive)
	postponed := newEvent(at(0, 20), at(0, 22), model.EventPostponed)
	for _, e := range []*model.Event{active, postponed} {
		require.NoError(t, s.CreateEvent(ctx, e))
	}

	engagements, err := s.FetchEngagements(ctx, at(-1, 0), at(1, 0), 0)
	require.NoError(t, err)

	var got []string
	for _, e := range engagements {
		got = append(got, fmt.Sprintf("%s:%d", e.Kind, e.ID))
	}
	assert.Equal(t, []string{
		fmt.Sprintf("booking:%d", longRunning.ID),
		fmt.Sprintf("event:%d", active.ID),
		fmt.Sprintf("booking:%d", pending.ID),
		fmt.Sprintf("booking:%d", approved.ID),
	}, got)
	assert.True(t, engagements[2].Start.Equal(at(0, 10)))
}

func TestGormStore_FetchEngagementsExcludesByID(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	edited := newBooking("c1", at(0, 10), at(0, 14), model.BookingPending)
	twin := newBooking("c2", at(0, 10), at(0, 14), model.BookingApproved)
	require.NoError(t, s.CreateBooking(ctx, edited))
	require.NoError(t, s.CreateBooking(ctx, twin))

	engagements, err := s.FetchEngagements(ctx, at(-1, 0), at(1, 0), edited.ID)
	require.NoError(t, err)

	require.Len(t, engagements, 1)
	assert.Equal(t, availability.KindBooking, engagements[0].Kind)
	assert.Equal(t, twin.ID, engagements[0].ID)
}

func TestGormStore_FetchEngagementsNormalizesZones(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	vienna := time.FixedZone("CEST", 2*3600)

	// 01:00 local is 23:00 UTC the day before.
	b := newBooking("c1", time.Date(2027, 6, 13, 1, 0, 0, 0, vienna), time.Date(2027, 6, 13, 3, 0, 0, 0, vienna), model.BookingPending)
	require.NoError(t, s.CreateBooking(ctx, b))

	engagements, err := s.FetchEngagements(ctx, at(0, 0), at(0, 0), 0)
	require.NoError(t, err)
	require.Len(t, engagements, 1)
	assert.True(t, engagements[0].Start.Equal(at(0, 23)))
}

func TestGormStore_Bookings(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	b := newBooking("c1", at(0, 10), at(0, 14), "")
	require.NoError(t, s.CreateBooking(ctx, b))
	require.NotZero(t, b.ID)

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, got.Status)
	assert.Equal(t, "Party", got.EventTitle)

	now := time.Now()
	require.NoError(t, s.TransitionBooking(ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingApproved, &now))

	again, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingApproved, again.Status)
	require.NotNil(t, again.ApprovedAt)

	_, err = s.GetBooking(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateBooking(ctx, newBooking("c1", at(3, 10), at(3, 12), model.BookingPending)))
	require.NoError(t, s.CreateBooking(ctx, newBooking("c2", at(4, 10), at(4, 12), model.BookingPending)))

	mine, err := s.ListCustomerBookings(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].StartAt.After(mine[1].StartAt))

	approved, err := s.ListBookings(ctx, at(0, 0), at(10, 0), model.BookingApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, b.ID, approved[0].ID)

	all, err := s.ListBookings(ctx, at(0, 0), at(10, 0))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormStore_Events(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	e := newEvent(at(0, 10), at(0, 14), "")
	require.NoError(t, s.CreateEvent(ctx, e))

	got, err := s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventActive, got.Status)

	require.NoError(t, s.UpdateEventStatus(ctx, e.ID, model.EventPostponed))
	got, err = s.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventPostponed, got.Status)

	assert.ErrorIs(t, s.UpdateEventStatus(ctx, 404, model.EventCancelled), ErrNotFound)
	_, err = s.GetEvent(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := s.ListEvents(ctx, at(0, 0), at(1, 0))
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = s.ListEvents(ctx, at(0, 0), at(1, 0), model.EventActive)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestGormStore_RegularSchedule(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.GetRegularSchedule(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &model.RegularSchedule{VenueName: "Truck", StreetAddress: "Ring 1", TownOrCity: "Wien", Friday: true, OpeningTime: "11:00", ClosingTime: "20:00"}
	require.NoError(t, s.ReplaceRegularSchedule(ctx, first))

	second := &model.RegularSchedule{VenueName: "Truck", StreetAddress: "Ring 2", TownOrCity: "Wien", Saturday: true, OpeningTime: "12:00", ClosingTime: "22:00"}
	require.NoError(t, s.ReplaceRegularSchedule(ctx, second))

	got, err := s.GetRegularSchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "Ring 2", got.StreetAddress)
	assert.True(t, got.IsActive)
	assert.True(t, got.Saturday)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateBooking(ctx, newBooking("c1", at(0, 10), at(0, 14), model.BookingPending)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	mine, err := s.ListCustomerBookings(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestGormStore_FetchEngagementsPropagatesErrors(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	dbErr := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings"`)).
		WithArgs(model.BookingPending, model.BookingApproved, Any{}, Any{}, int64(7)).
		WillReturnError(dbErr)

	_, err := s.FetchEngagements(context.Background(), at(-1, 0), at(1, 0), 7)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetBookingNotFound(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "bookings" WHERE "bookings"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetBooking(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies sqlmock.Argument interface.
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_UpdateBookingDetails(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	b := newBooking("c1", at(0, 10), at(0, 14), model.BookingApproved)
	require.NoError(t, s.CreateBooking(ctx, b))
	approvedAt := time.Date(2027, 1, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.TransitionBooking(ctx, b.ID, []model.BookingStatus{model.BookingApproved}, model.BookingApproved, &approvedAt))

	edit := *b
	edit.EventTitle = "Renamed"
	edit.GuestCount = 150
	edit.StartAt, edit.EndAt = at(1, 10), at(1, 14)
	// Status and approved_at on the value being written are ignored.
	edit.Status = model.BookingPending
	edit.ApprovedAt = nil
	require.NoError(t, s.UpdateBookingDetails(ctx, &edit, model.BookingApproved))

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.EventTitle)
	assert.Equal(t, 150, got.GuestCount)
	assert.True(t, got.StartAt.Equal(at(1, 10)))
	assert.Equal(t, model.BookingApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(approvedAt))
}

func TestGormStore_GuardedWritesRejectStaleStatus(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	b := newBooking("c1", at(0, 10), at(0, 14), model.BookingPending)
	require.NoError(t, s.CreateBooking(ctx, b))
	require.NoError(t, s.TransitionBooking(ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingCancelled, nil))

	// A writer that still believes the booking is pending must not revive it.
	edit := *b
	edit.EventTitle = "Too late"
	err := s.UpdateBookingDetails(ctx, &edit, model.BookingPending)
	assert.ErrorIs(t, err, ErrStale)

	err = s.TransitionBooking(ctx, b.ID, []model.BookingStatus{model.BookingPending}, model.BookingApproved, nil)
	assert.ErrorIs(t, err, ErrStale)

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
	assert.Equal(t, "Party", got.EventTitle)
	assert.Nil(t, got.ApprovedAt)
}
