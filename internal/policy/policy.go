// Package policy decides how much of an existing booking its customer may
// still change.
package policy

import (
	"fmt"
	"time"

	"venue-booking-backend/config"
	"venue-booking-backend/internal/availability"
	"venue-booking-backend/internal/model"
)

// EditLevel is how much of a booking may change.
type EditLevel string

const (
	EditFull     EditLevel = "full"
	EditCosmetic EditLevel = "cosmetic"
	EditNone     EditLevel = "none"
)

var (
	cosmeticFields = []string{"event_title", "description", "event_photo"}
	logisticFields = []string{
		"event_type", "guest_count", "start_at", "end_at", "message",
		"street_address", "postcode", "town_or_city", "country",
	}
)

// Decision is the edit permission for one booking at one instant. It is
// recomputed on every read and never stored.
type Decision struct {
	CanEdit        bool      `json:"can_edit"`
	EditLevel      EditLevel `json:"edit_level"`
	DaysUntil      *int      `json:"days_until"`
	EditableFields []string  `json:"editable_fields"`
	LockedFields   []string  `json:"locked_fields"`
	Message        string    `json:"message"`
}

// Edit is a submitted change, split into the field groups the policy gates.
type Edit struct {
	Cosmetics model.BookingCosmetics
	Logistics model.BookingLogistics
}

// Policy evaluates edit permissions against the venue's thresholds.
type Policy struct {
	fullDays     int
	cosmeticDays int
	loc          *time.Location
}

// New creates a policy. Days are counted on the venue's calendar.
func New(rules config.Rules, loc *time.Location) *Policy {
	return &Policy{fullDays: rules.FullEditDays, cosmeticDays: rules.CosmeticEditDays, loc: loc}
}

// Evaluate returns the edit decision for b as of now.
func (p *Policy) Evaluate(b model.Booking, now time.Time) Decision {
	if b.Status == model.BookingCancelled {
		return Decision{
			EditLevel:      EditNone,
			EditableFields: []string{},
			LockedFields:   allFields(),
			Message:        "This booking has been cancelled and can no longer be edited.",
		}
	}

	days := availability.DaysBetween(now, b.StartAt, p.loc)

	switch {
	case days >= p.fullDays:
		return Decision{
			CanEdit:        true,
			EditLevel:      EditFull,
			DaysUntil:      &days,
			EditableFields: allFields(),
			LockedFields:   []string{},
			Message:        fmt.Sprintf("Your event is %d days away. All booking details can be changed.", days),
		}
	case days >= p.cosmeticDays:
		return Decision{
			CanEdit:        true,
			EditLevel:      EditCosmetic,
			DaysUntil:      &days,
			EditableFields: append([]string(nil), cosmeticFields...),
			LockedFields:   append([]string(nil), logisticFields...),
			Message: fmt.Sprintf(
				"Your event is %d days away. Date, time, guests and location are locked %d days before the event; only the title, description and photo can still be changed.",
				days, p.fullDays,
			),
		}
	default:
		msg := fmt.Sprintf("Your event is %d %s away. Online changes close %d days before the event, please contact support.",
			days, dayWord(days), p.cosmeticDays)
		if days < 0 {
			msg = "This event has already taken place and can no longer be edited."
		}
		return Decision{
			EditLevel:      EditNone,
			DaysUntil:      &days,
			EditableFields: []string{},
			LockedFields:   allFields(),
			Message:        msg,
		}
	}
}

// Apply merges edit into stored according to the decision. Locked groups
// keep their stored values whatever the edit carries; identity and
// lifecycle fields are never touched.
func (d Decision) Apply(stored model.Booking, edit Edit) model.Booking {
	out := stored
	switch d.EditLevel {
	case EditFull:
		out.BookingCosmetics = edit.Cosmetics
		out.BookingLogistics = edit.Logistics
	case EditCosmetic:
		out.BookingCosmetics = edit.Cosmetics
	}
	return out
}

func allFields() []string {
	out := make([]string, 0, len(cosmeticFields)+len(logisticFields))
	out = append(out, cosmeticFields...)
	return append(out, logisticFields...)
}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
