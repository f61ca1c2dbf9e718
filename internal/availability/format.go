package availability

import "time"

const (
	slotClockLayout = "15:04"
	slotDateLayout  = "02 Jan 2006"
)

// DisplaySlot is a slot prepared for a booking form.
type DisplaySlot struct {
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	StartDate       string    `json:"start_date"`
	EndDate         *string   `json:"end_date"` // set only when the slot crosses midnight
	Duration        string    `json:"duration"`
	DurationHours   float64   `json:"duration_hours"`
	CrossesMidnight bool      `json:"crosses_midnight"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
}

// FormatForDisplay renders slots in loc, keeping their order.
func FormatForDisplay(slots []Slot, loc *time.Location) []DisplaySlot {
	out := make([]DisplaySlot, 0, len(slots))
	for _, s := range slots {
		start, end := s.Start.In(loc), s.End.In(loc)
		ds := DisplaySlot{
			StartTime:     start.Format(slotClockLayout),
			EndTime:       end.Format(slotClockLayout),
			StartDate:     start.Format(slotDateLayout),
			Duration:      s.Duration.Display,
			DurationHours: s.Duration.TotalHours,
			StartAt:       s.Start,
			EndAt:         s.End,
		}
		if DaysBetween(start, end, loc) != 0 {
			endDate := end.Format(slotDateLayout)
			ds.EndDate = &endDate
			ds.CrossesMidnight = true
		}
		out = append(out, ds)
	}
	return out
}
