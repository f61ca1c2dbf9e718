package model

import "time"

// EventStatus is the state of an admin-created event.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventPostponed EventStatus = "postponed"
	EventCancelled EventStatus = "cancelled"
)

// Event is a one-off admin engagement: a public event, a private booking
// arranged outside the request flow, or a closure.
type Event struct {
	ID            int64       `gorm:"primaryKey" json:"id"`
	AdminID       string      `gorm:"size:64;not null" json:"admin_id"`
	EventTitle    string      `gorm:"size:100;not null" json:"event_title" validate:"required,max=100"`
	EventType     EventType   `gorm:"size:20;not null" json:"event_type" validate:"required,oneof=open private closure"`
	StartAt       time.Time   `gorm:"not null;index" json:"start_at" validate:"required"`
	EndAt         time.Time   `gorm:"not null;index" json:"end_at" validate:"required"`
	StreetAddress string      `gorm:"size:80" json:"street_address" validate:"max=80"`
	Postcode      string      `gorm:"size:20" json:"postcode" validate:"max=20"`
	TownOrCity    string      `gorm:"size:40" json:"town_or_city" validate:"max=40"`
	Country       string      `gorm:"size:2" json:"country" validate:"omitempty,len=2"`
	Description   string      `gorm:"type:text;not null" json:"description" validate:"required"`
	Message       string      `gorm:"type:text" json:"message"`
	Status        EventStatus `gorm:"size:20;not null;index;default:active" json:"status" validate:"omitempty,oneof=active postponed cancelled"`
	EventPhoto    string      `gorm:"size:512" json:"event_photo"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}

// HoldsVenue reports whether the event occupies venue time.
func (e Event) HoldsVenue() bool {
	return e.Status == EventActive
}

// NeedsAddress reports whether the event type must carry a street address and town.
func (e Event) NeedsAddress() bool {
	return e.EventType == EventTypeOpen || e.EventType == EventTypePrivate
}
