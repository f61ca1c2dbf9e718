package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-booking-backend/config"
	"venue-booking-backend/internal/model"
)

var now = time.Date(2027, 3, 1, 18, 45, 0, 0, time.UTC)

func bookingIn(days int, status model.BookingStatus) model.Booking {
	start := time.Date(2027, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return model.Booking{
		ID:     1,
		Status: status,
		BookingLogistics: model.BookingLogistics{
			StartAt: start,
			EndAt:   start.Add(5 * time.Hour),
		},
	}
}

func TestEvaluate_Thresholds(t *testing.T) {
	p := New(config.DefaultRules(), time.UTC)

	testCases := []struct {
		days    int
		level   EditLevel
		canEdit bool
	}{
		{40, EditFull, true},
		{15, EditFull, true},
		{14, EditCosmetic, true},
		{3, EditCosmetic, true},
		{2, EditNone, false},
		{0, EditNone, false},
		{-1, EditNone, false},
	}

	for _, tc := range testCases {
		d := p.Evaluate(bookingIn(tc.days, model.BookingPending), now)
		assert.Equal(t, tc.level, d.EditLevel, "days=%d", tc.days)
		assert.Equal(t, tc.canEdit, d.CanEdit, "days=%d", tc.days)
		require.NotNil(t, d.DaysUntil)
		assert.Equal(t, tc.days, *d.DaysUntil)
		assert.NotEmpty(t, d.Message)
	}
}

func TestEvaluate_CountsCalendarDays(t *testing.T) {
	p := New(config.DefaultRules(), time.UTC)

	// 23:59 the evening before is still a whole calendar day away.
	late := time.Date(2027, 3, 1, 23, 59, 0, 0, time.UTC)
	b := bookingIn(15, model.BookingApproved)
	b.StartAt = time.Date(2027, 3, 16, 0, 1, 0, 0, time.UTC)

	d := p.Evaluate(b, late)
	assert.Equal(t, EditFull, d.EditLevel)
	assert.Equal(t, 15, *d.DaysUntil)
}

func TestEvaluate_FieldSets(t *testing.T) {
	p := New(config.DefaultRules(), time.UTC)

	full := p.Evaluate(bookingIn(20, model.BookingApproved), now)
	assert.Len(t, full.EditableFields, 12)
	assert.Empty(t, full.LockedFields)
	assert.Contains(t, full.Message, "20 days")

	cosmetic := p.Evaluate(bookingIn(10, model.BookingApproved), now)
	assert.ElementsMatch(t, []string{"event_title", "description", "event_photo"}, cosmetic.EditableFields)
	assert.Contains(t, cosmetic.LockedFields, "start_at")
	assert.Contains(t, cosmetic.LockedFields, "guest_count")
	assert.Contains(t, cosmetic.Message, "10 days")

	none := p.Evaluate(bookingIn(1, model.BookingPending), now)
	assert.Empty(t, none.EditableFields)
	assert.Len(t, none.LockedFields, 12)
	assert.Contains(t, none.Message, "1 day away")
	assert.Contains(t, none.Message, "contact support")
}

func TestEvaluate_CancelledIsTerminal(t *testing.T) {
	p := New(config.DefaultRules(), time.UTC)

	for _, days := range []int{100, 15, 5, 0} {
		d := p.Evaluate(bookingIn(days, model.BookingCancelled), now)
		assert.False(t, d.CanEdit)
		assert.Equal(t, EditNone, d.EditLevel)
		assert.Nil(t, d.DaysUntil)
		assert.Contains(t, d.Message, "cancelled")
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	rules := config.DefaultRules()
	rules.FullEditDays = 7
	rules.CosmeticEditDays = 1
	p := New(rules, time.UTC)

	assert.Equal(t, EditFull, p.Evaluate(bookingIn(7, model.BookingPending), now).EditLevel)
	assert.Equal(t, EditCosmetic, p.Evaluate(bookingIn(1, model.BookingPending), now).EditLevel)
	assert.Equal(t, EditNone, p.Evaluate(bookingIn(0, model.BookingPending), now).EditLevel)
}

func TestApply(t *testing.T) {
	stored := bookingIn(10, model.BookingApproved)
	stored.CustomerID = "cust-1"
	stored.EventTitle = "Wedding"
	stored.GuestCount = 80
	stored.StreetAddress = "Hauptstrasse 1"

	edit := Edit{
		Cosmetics: model.BookingCosmetics{EventTitle: "Wedding party", Description: "Evening reception"},
		Logistics: stored.BookingLogistics,
	}
	edit.Logistics.GuestCount = 120
	edit.Logistics.StartAt = stored.StartAt.Add(2 * time.Hour)

	t.Run("full replaces both groups", func(t *testing.T) {
		got := Decision{EditLevel: EditFull}.Apply(stored, edit)
		assert.Equal(t, "Wedding party", got.EventTitle)
		assert.Equal(t, 120, got.GuestCount)
		assert.Equal(t, edit.Logistics.StartAt, got.StartAt)
		assert.Equal(t, "cust-1", got.CustomerID)
		assert.Equal(t, model.BookingApproved, got.Status)
	})

	t.Run("cosmetic keeps logistics", func(t *testing.T) {
		got := Decision{EditLevel: EditCosmetic}.Apply(stored, edit)
		assert.Equal(t, "Wedding party", got.EventTitle)
		assert.Equal(t, "Evening reception", got.Description)
		assert.Equal(t, stored.BookingLogistics, got.BookingLogistics)
	})

	t.Run("none keeps everything", func(t *testing.T) {
		got := Decision{EditLevel: EditNone}.Apply(stored, edit)
		assert.Equal(t, stored, got)
	})
}
