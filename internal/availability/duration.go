package availability

import (
	"fmt"
	"math"
	"time"
)

// Duration is a time span in the numeric and display forms used by slot
// listings and conflict messages.
type Duration struct {
	TotalMinutes   int     `json:"total_minutes"`
	TotalHours     float64 `json:"total_hours"`
	Display        string  `json:"display"`         // "10h 30m"
	DisplayCompact string  `json:"display_compact"` // "10:30"
}

// CalculateDuration measures the span from start to end. TotalMinutes is
// floored; TotalHours is rounded to two decimals.
func CalculateDuration(start, end time.Time) Duration {
	seconds := end.Sub(start).Seconds()
	totalMinutes := int(math.Floor(seconds / 60))
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	display := fmt.Sprintf("%dh", hours)
	if minutes != 0 {
		display = fmt.Sprintf("%dh %dm", hours, minutes)
	}

	return Duration{
		TotalMinutes:   totalMinutes,
		TotalHours:     math.Round(seconds/3600*100) / 100,
		Display:        display,
		DisplayCompact: fmt.Sprintf("%d:%02d", hours, minutes),
	}
}
