package model

import "time"

// BookingStatus is the lifecycle state of a customer booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// EventType classifies bookings and admin events.
type EventType string

const (
	EventTypeOpen    EventType = "open"
	EventTypePrivate EventType = "private"
	EventTypeClosure EventType = "closure" // admin events only
)

// BookingCosmetics are the fields a customer may still change close to the event.
type BookingCosmetics struct {
	EventTitle  string `gorm:"size:100;not null" json:"event_title" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	EventPhoto  string `gorm:"size:512" json:"event_photo"`
}

// BookingLogistics are the fields that lock once the event is near.
type BookingLogistics struct {
	EventType     EventType `gorm:"size:20;not null" json:"event_type" validate:"required,oneof=open private"`
	GuestCount    int       `gorm:"not null" json:"guest_count" validate:"required,gt=0"`
	StartAt       time.Time `gorm:"not null;index" json:"start_at" validate:"required"`
	EndAt         time.Time `gorm:"not null;index" json:"end_at" validate:"required"`
	Message       string    `gorm:"type:text" json:"message"`
	StreetAddress string    `gorm:"size:80;not null" json:"street_address" validate:"required,max=80"`
	Postcode      string    `gorm:"size:20;not null" json:"postcode" validate:"required,max=20"`
	TownOrCity    string    `gorm:"size:40" json:"town_or_city" validate:"max=40"`
	Country       string    `gorm:"size:2" json:"country" validate:"omitempty,len=2"`
}

// Booking represents a customer booking throughout its lifecycle.
type Booking struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	CustomerID string `gorm:"size:64;not null;index" json:"customer_id"`

	BookingCosmetics
	BookingLogistics

	Status     BookingStatus `gorm:"size:20;not null;index;default:pending" json:"status"`
	ApprovedAt *time.Time    `json:"approved_at,omitempty"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`
}

// HoldsVenue reports whether the booking occupies venue time.
func (b Booking) HoldsVenue() bool {
	return b.Status == BookingPending || b.Status == BookingApproved
}
