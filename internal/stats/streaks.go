// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// SessionDates reduces sessions to the distinct calendar days they started on,
// in each start time's own location.
func SessionDates(sessions []model.Session) map[model.Date]struct{} {
	dates := make(map[model.Date]struct{}, len(sessions))
	for _, s := range sessions {
		dates[model.DateOf(s.StartTime)] = struct{}{}
	}
	return dates
}

// ComputeStreaks returns the current and longest consecutive-day streaks.
//
// The current streak counts back from today. A missing today does not break
// the streak: the walk then starts from yesterday.
func ComputeStreaks(dates map[model.Date]struct{}, today model.Date) model.Streaks {
	if len(dates) == 0 {
		return model.Streaks{}
	}
	return model.Streaks{
		Current: currentStreak(dates, today),
		Longest: longestStreak(dates),
	}
}

func currentStreak(dates map[model.Date]struct{}, today model.Date) int {
	day := today
	if _, ok := dates[day]; !ok {
		day = day.AddDays(-1)
	}
	count := 0
	for {
		if _, ok := dates[day]; !ok {
			return count
		}
		count++
		day = day.AddDays(-1)
	}
}

func longestStreak(dates map[model.Date]struct{}) int {
	sorted := make([]model.Date, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})
	longest := 1
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].DaysSince(sorted[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
