package availability

import "time"

// DayStart returns local midnight of the calendar day containing t.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween counts calendar days from the local date of from to the local
// date of to. It ignores the clock and is unaffected by DST transitions.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	from, to = from.In(loc), to.In(loc)
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
