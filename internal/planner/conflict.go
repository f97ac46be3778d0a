package planner

import (
	"fmt"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// Interval is a half-open range of minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// IntervalOf converts a start clock and a duration in minutes to an Interval.
// The end is not wrapped, so a block never overlaps the next day.
func IntervalOf(start string, minutes int) (Interval, error) {
	m, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: m, End: m + minutes}, nil
}

// Overlaps reports whether the two intervals share at least one minute.
// Adjacent intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Candidate is a block about to be created, updated or duplicated.
type Candidate struct {
	DayOfWeek time.Weekday
	StartTime string
	Duration  int
}

// CandidateOf returns the schedule part of b.
func CandidateOf(b model.PlannedBlock) Candidate {
	return Candidate{DayOfWeek: b.DayOfWeek, StartTime: b.StartTime, Duration: b.Duration}
}

// CheckConflicts returns every active block on the candidate's day whose
// interval overlaps the candidate, in input order. A block with id excludeID
// is skipped, which lets an update ignore its own previous version.
func CheckConflicts(c Candidate, existing []model.PlannedBlock, excludeID string) ([]model.PlannedBlock, error) {
	want, err := IntervalOf(c.StartTime, c.Duration)
	if err != nil {
		return nil, err
	}
	var conflicts []model.PlannedBlock
	for _, b := range existing {
		if !b.IsActive || b.DayOfWeek != c.DayOfWeek {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		have, err := IntervalOf(b.StartTime, b.Duration)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.ID, err)
		}
		if want.Overlaps(have) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}
