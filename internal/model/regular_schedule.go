package model

import (
	"strings"
	"time"
)

// RegularSchedule is the venue's fixed weekly trading pattern.
type RegularSchedule struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	VenueName     string `gorm:"size:100;not null" json:"venue_name"`
	StreetAddress string `gorm:"size:80;not null" json:"street_address"`
	Postcode      string `gorm:"size:20" json:"postcode"`
	TownOrCity    string `gorm:"size:40;not null" json:"town_or_city"`
	Country       string `gorm:"size:2" json:"country"`

	Monday    bool `gorm:"not null" json:"monday"`
	Tuesday   bool `gorm:"not null" json:"tuesday"`
	Wednesday bool `gorm:"not null" json:"wednesday"`
	Thursday  bool `gorm:"not null" json:"thursday"`
	Friday    bool `gorm:"not null" json:"friday"`
	Saturday  bool `gorm:"not null" json:"saturday"`
	Sunday    bool `gorm:"not null" json:"sunday"`

	OpeningTime string    `gorm:"size:5;not null" json:"opening_time"` // HH:MM
	ClosingTime string    `gorm:"size:5;not null" json:"closing_time"` // HH:MM
	IsActive    bool      `gorm:"not null" json:"is_active"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// IsOpenOn reports whether the venue trades on the given weekday.
func (r RegularSchedule) IsOpenOn(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return r.Monday
	case time.Tuesday:
		return r.Tuesday
	case time.Wednesday:
		return r.Wednesday
	case time.Thursday:
		return r.Thursday
	case time.Friday:
		return r.Friday
	case time.Saturday:
		return r.Saturday
	case time.Sunday:
		return r.Sunday
	}
	return false
}

var weekdayAbbrevs = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Summary renders the schedule as "Naschmarkt - Tue - Sat 11:00 to 20:00".
func (r RegularSchedule) Summary() string {
	open := []bool{r.Monday, r.Tuesday, r.Wednesday, r.Thursday, r.Friday, r.Saturday, r.Sunday}
	var idx []int
	for i, ok := range open {
		if ok {
			idx = append(idx, i)
		}
	}

	var days string
	switch {
	case len(idx) == 0:
		days = "Closed"
	case len(idx) == 1:
		days = weekdayAbbrevs[idx[0]]
	case idx[len(idx)-1]-idx[0] == len(idx)-1:
		days = weekdayAbbrevs[idx[0]] + " - " + weekdayAbbrevs[idx[len(idx)-1]]
	default:
		names := make([]string, len(idx))
		for i, d := range idx {
			names[i] = weekdayAbbrevs[d]
		}
		days = strings.Join(names, ", ")
	}
	return r.VenueName + " - " + days + " " + r.OpeningTime + " to " + r.ClosingTime
}
