package availability

import (
	"fmt"
	"strconv"
	"time"

	"venue-booking-backend/config"
)

// ConflictKind classifies a rejected candidate range.
type ConflictKind string

const (
	// ConflictWindow: engagements on both sides, an open window remains between them.
	ConflictWindow ConflictKind = "window"
	// ConflictFullyBooked: engagements on both sides leave no usable window.
	ConflictFullyBooked ConflictKind = "fully_booked"
	// ConflictStartLater: only earlier engagements conflict.
	ConflictStartLater ConflictKind = "start_later"
	// ConflictEndEarlier: only later engagements conflict.
	ConflictEndEarlier ConflictKind = "end_earlier"
)

// Conflict explains why a candidate range was rejected and what would fit.
type Conflict struct {
	Kind   ConflictKind `json:"kind"`
	Before []Engagement `json:"before"`
	After  []Engagement `json:"after"`

	// SuggestedStart is the earliest acceptable start (window and start_later).
	SuggestedStart *time.Time `json:"suggested_start,omitempty"`
	// SuggestedEnd is the latest acceptable end (window and end_earlier).
	SuggestedEnd *time.Time `json:"suggested_end,omitempty"`
	// WindowHours is the open window length in whole hours (window only).
	WindowHours int `json:"window_hours,omitempty"`

	Message string `json:"message"`
}

const (
	displayDateTime = "2 January 2006, 15:04"
	displayClock    = "15:04"
)

// Detector validates a candidate range against a snapshot of engagements.
type Detector struct {
	gap       time.Duration
	minWindow time.Duration
	loc       *time.Location
}

// NewDetector creates a detector for the given rules. Suggested times are
// rendered in loc.
func NewDetector(rules config.Rules, loc *time.Location) *Detector {
	return &Detector{gap: rules.MinGap, minWindow: rules.MinSlot, loc: loc}
}

// Gap returns the mandatory buffer between engagements.
func (d *Detector) Gap() time.Duration {
	return d.gap
}

// LookupRange returns the local calendar days (as day starts, both inclusive)
// whose engagements can conflict with the candidate.
func (d *Detector) LookupRange(candidate Interval) (from, to time.Time) {
	from = DayStart(earliest(candidate.Start.AddDate(0, 0, -1), candidate.Start.Add(-d.gap)), d.loc)
	to = DayStart(latest(candidate.End.AddDate(0, 0, 1), candidate.End.Add(d.gap)), d.loc)
	return from, to
}

// Conflicts reports whether engagement e is too close to the candidate.
// They are compatible only if one ends at least gap before the other starts.
func Conflicts(candidate Interval, e Engagement, gap time.Duration) bool {
	clearBefore := !candidate.End.Add(gap).After(e.Start)
	clearAfter := !e.End.Add(gap).After(candidate.Start)
	return !(clearBefore || clearAfter)
}

// Check returns nil when the candidate is acceptable, otherwise a Conflict
// with the remedy a customer can act on.
func (d *Detector) Check(candidate Interval, engagements []Engagement) *Conflict {
	var before, after []Engagement
	for _, e := range engagements {
		if !Conflicts(candidate, e, d.gap) {
			continue
		}
		if e.Start.Before(candidate.Start) {
			before = append(before, e)
		} else {
			after = append(after, e)
		}
	}

	switch {
	case len(before) == 0 && len(after) == 0:
		return nil

	case len(before) > 0 && len(after) > 0:
		windowStart := latestEnd(before).Add(d.gap)
		windowEnd := earliestStart(after).Add(-d.gap)
		if windowEnd.Sub(windowStart) >= d.minWindow {
			hours := int(windowEnd.Sub(windowStart).Hours())
			return &Conflict{
				Kind:           ConflictWindow,
				Before:         before,
				After:          after,
				SuggestedStart: &windowStart,
				SuggestedEnd:   &windowEnd,
				WindowHours:    hours,
				Message: fmt.Sprintf(
					"Conflicts with existing engagements before and after this time. The open window is %s (%d %s). Minimum %s-hour gap required between engagements.",
					d.formatRange(windowStart, windowEnd), hours, plural(hours, "hour", "hours"), d.gapHours(),
				),
			}
		}
		return &Conflict{
			Kind:    ConflictFullyBooked,
			Before:  before,
			After:   after,
			Message: "Conflicts with existing engagements before and after this time. This date is fully booked, please pick another date.",
		}

	case len(before) > 0:
		start := latestEnd(before).Add(d.gap)
		return &Conflict{
			Kind:           ConflictStartLater,
			Before:         before,
			SuggestedStart: &start,
			Message: fmt.Sprintf(
				"Conflicts with an earlier engagement. Please start at %s or later. Minimum %s-hour gap required between engagements.",
				start.In(d.loc).Format(displayDateTime), d.gapHours(),
			),
		}

	default:
		end := earliestStart(after).Add(-d.gap)
		return &Conflict{
			Kind:         ConflictEndEarlier,
			After:        after,
			SuggestedEnd: &end,
			Message: fmt.Sprintf(
				"Conflicts with a later engagement. Please end by %s or earlier. Minimum %s-hour gap required between engagements.",
				end.In(d.loc).Format(displayDateTime), d.gapHours(),
			),
		}
	}
}

// formatRange renders "2 January 2006, 14:00 to 18:00", repeating the date
// on the end side only when it differs.
func (d *Detector) formatRange(start, end time.Time) string {
	start, end = start.In(d.loc), end.In(d.loc)
	if DaysBetween(start, end, d.loc) == 0 {
		return start.Format(displayDateTime) + " to " + end.Format(displayClock)
	}
	return start.Format(displayDateTime) + " to " + end.Format(displayDateTime)
}

func (d *Detector) gapHours() string {
	return strconv.FormatFloat(d.gap.Hours(), 'f', -1, 64)
}

func latestEnd(es []Engagement) time.Time {
	t := es[0].End
	for _, e := range es[1:] {
		t = latest(t, e.End)
	}
	return t
}

func earliestStart(es []Engagement) time.Time {
	t := es[0].Start
	for _, e := range es[1:] {
		t = earliest(t, e.Start)
	}
	return t
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
