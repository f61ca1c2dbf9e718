package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"venue-booking-backend/internal/model"
	"venue-booking-backend/internal/store"
)

type fakeSource struct {
	events   []model.Event
	bookings []model.Booking
	regular  *model.RegularSchedule
	err      error
}

func (f *fakeSource) ListEvents(_ context.Context, _, _ time.Time, _ ...model.EventStatus) ([]model.Event, error) {
	return f.events, f.err
}

func (f *fakeSource) ListBookings(_ context.Context, _, _ time.Time, _ ...model.BookingStatus) ([]model.Booking, error) {
	return f.bookings, nil
}

func (f *fakeSource) GetRegularSchedule(_ context.Context) (*model.RegularSchedule, error) {
	if f.regular == nil {
		return nil, store.ErrNotFound
	}
	return f.regular, nil
}

// 2027-06-07 is a Monday.
var monday = time.Date(2027, 6, 7, 9, 30, 0, 0, time.UTC)

func day(offset, hour int) time.Time {
	return time.Date(2027, 6, 7+offset, hour, 0, 0, 0, time.UTC)
}

func TestUpcoming_Priority(t *testing.T) {
	src := &fakeSource{
		events: []model.Event{
			{ID: 1, EventTitle: "Street festival", StartAt: day(1, 10), EndAt: day(1, 22)},
			// Runs overnight into Thursday.
			{ID: 2, EventTitle: "Night market", StartAt: day(2, 18), EndAt: day(3, 2)},
		},
		bookings: []model.Booking{
			{ID: 10, BookingCosmetics: model.BookingCosmetics{EventTitle: "Wedding"}, BookingLogistics: model.BookingLogistics{StartAt: day(1, 12), EndAt: day(1, 20)}},
			{ID: 11, BookingCosmetics: model.BookingCosmetics{EventTitle: "Birthday"}, BookingLogistics: model.BookingLogistics{StartAt: day(4, 12), EndAt: day(4, 20), TownOrCity: "Wien"}},
		},
		regular: &model.RegularSchedule{VenueName: "Naschmarkt", Friday: true, Saturday: true, OpeningTime: "11:00", ClosingTime: "20:00"},
	}
	svc := NewService(src, time.UTC, zap.NewNop())

	days, err := svc.Upcoming(context.Background(), monday, 0)
	require.NoError(t, err)
	require.Len(t, days, DefaultDays)

	kinds := make([]Kind, len(days))
	for i, d := range days {
		kinds[i] = d.Type
	}
	assert.Equal(t, []Kind{
		KindClosed,  // Mon
		KindEvent,   // Tue: event beats booking
		KindEvent,   // Wed
		KindEvent,   // Thu: overnight tail
		KindBooking, // Fri: booking beats regular
		KindRegular, // Sat
		KindClosed,  // Sun
		KindClosed,  // Mon
		KindClosed,  // Tue
	}, kinds)

	assert.True(t, days[0].IsToday)
	assert.False(t, days[1].IsToday)
	assert.Equal(t, "2027-06-07", days[0].Date)
	assert.Equal(t, "Monday", days[0].Weekday)
	assert.Equal(t, int64(1), days[1].Event.ID)
	assert.Equal(t, "Wien", days[4].Booking.TownOrCity)
	assert.Equal(t, "Naschmarkt - Fri - Sat 11:00 to 20:00", days[5].Summary)
}

func TestUpcoming_NoRegularSchedule(t *testing.T) {
	svc := NewService(&fakeSource{}, time.UTC, zap.NewNop())

	days, err := svc.Upcoming(context.Background(), monday, 3)
	require.NoError(t, err)
	require.Len(t, days, 3)
	for _, d := range days {
		assert.Equal(t, KindClosed, d.Type)
	}
}

func TestUpcoming_Bounds(t *testing.T) {
	svc := NewService(&fakeSource{}, time.UTC, zap.NewNop())

	days, err := svc.Upcoming(context.Background(), monday, 1000)
	require.NoError(t, err)
	assert.Len(t, days, MaxDays)
}

func TestUpcoming_SourceError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeSource{err: boom}, time.UTC, zap.NewNop())

	_, err := svc.Upcoming(context.Background(), monday, 3)
	assert.ErrorIs(t, err, boom)
}
