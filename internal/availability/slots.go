package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"venue-booking-backend/config"
)

// Slot is a maximal open interval between blocked periods.
type Slot struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration Duration  `json:"duration"`
}

func newSlot(start, end time.Time) Slot {
	return Slot{Start: start, End: end, Duration: CalculateDuration(start, end)}
}

// MergeBlocked expands every engagement by gap and merges the resulting
// periods that overlap or touch. The result is sorted and disjoint; the
// input is not modified.
func MergeBlocked(engagements []Engagement, gap time.Duration) []Interval {
	blocked := make([]Interval, 0, len(engagements))
	for _, e := range engagements {
		blocked = append(blocked, e.Blocked(gap))
	}
	sort.SliceStable(blocked, func(i, j int) bool {
		return blocked[i].Start.Before(blocked[j].Start)
	})

	merged := make([]Interval, 0, len(blocked))
	for _, b := range blocked {
		n := len(merged)
		if n > 0 && !b.Start.After(merged[n-1].End) {
			merged[n-1] = Interval{Start: merged[n-1].Start, End: latest(merged[n-1].End, b.End)}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// SearchWindow returns the span scanned for the given day: from the start of
// the previous day to the start of the day after next.
func SearchWindow(day time.Time, loc *time.Location) Interval {
	d := DayStart(day, loc)
	return Interval{Start: d.AddDate(0, 0, -1), End: d.AddDate(0, 0, 2)}
}

// DayWindow returns the local calendar day containing day.
func DayWindow(day time.Time, loc *time.Location) Interval {
	d := DayStart(day, loc)
	return Interval{Start: d, End: d.AddDate(0, 0, 1)}
}

// ComputeSlots returns, in chronological order, the open intervals inside the
// search window of day that overlap that day and last at least minSlot.
// An empty result means the day is fully booked.
func ComputeSlots(day time.Time, loc *time.Location, engagements []Engagement, gap, minSlot time.Duration) []Slot {
	relevant := DayWindow(day, loc)
	search := SearchWindow(day, loc)

	if len(engagements) == 0 {
		return []Slot{newSlot(relevant.Start, search.End)}
	}

	slots := []Slot{}
	emit := func(start, end time.Time) {
		if end.After(search.End) {
			end = search.End
		}
		open := Interval{Start: start, End: end}
		if !open.Overlaps(relevant) || open.Duration() < minSlot {
			return
		}
		slots = append(slots, newSlot(start, end))
	}

	cursor := search.Start
	for _, block := range MergeBlocked(engagements, gap) {
		if block.Start.After(cursor) {
			emit(cursor, block.Start)
		}
		cursor = latest(cursor, block.End)
	}
	if search.End.After(cursor) {
		emit(cursor, search.End)
	}
	return slots
}

// Calculator answers slot queries against a live engagement source.
type Calculator struct {
	source Source
	rules  config.Rules
	loc    *time.Location
	logger *zap.Logger
}

// NewCalculator creates a calculator. Results are never cached; every call
// reads a fresh snapshot.
func NewCalculator(source Source, rules config.Rules, loc *time.Location, logger *zap.Logger) *Calculator {
	return &Calculator{source: source, rules: rules, loc: loc, logger: logger}
}

// AvailableSlots returns the open slots touching the local day of target.
// A positive excludeBookingID leaves that booking out of the calendar, so a
// customer editing it sees its own time as free.
func (c *Calculator) AvailableSlots(ctx context.Context, target time.Time, excludeBookingID int64) ([]Slot, error) {
	day := DayStart(target, c.loc)
	engagements, err := c.source.FetchEngagements(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("fetch engagements: %w", err)
	}

	slots := ComputeSlots(day, c.loc, engagements, c.rules.MinGap, c.rules.MinSlot)
	c.logger.Debug("Calculator.AvailableSlots",
		zap.String("day", day.Format("2006-01-02")),
		zap.Int("engagements", len(engagements)),
		zap.Int("slots", len(slots)),
	)
	return slots, nil
}
