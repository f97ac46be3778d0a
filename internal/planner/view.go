package planner

import (
	"sort"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// DaySummary totals the scheduled time of one day.
type DaySummary struct {
	Events           int
	ScheduledMinutes int
	FreeMinutes      int
	Scheduled        string
	Free             string
}

// Summarize totals the active blocks in blocks. Free time never goes below zero.
func Summarize(blocks []model.PlannedBlock) DaySummary {
	var sum DaySummary
	for _, b := range blocks {
		if !b.IsActive {
			continue
		}
		sum.Events++
		sum.ScheduledMinutes += b.Duration
	}
	sum.FreeMinutes = max(minutesPerDay-sum.ScheduledMinutes, 0)
	sum.Scheduled = FormatMinutes(sum.ScheduledMinutes)
	sum.Free = FormatMinutes(sum.FreeMinutes)
	return sum
}

// WeekDay is one column of the planner week view.
type WeekDay struct {
	Date    model.Date
	Weekday time.Weekday
	Blocks  []model.PlannedBlock
	Summary DaySummary
}

// WeekView places active blocks on the dates of the Sunday-start week
// containing ref, ordered by start time within each day.
func WeekView(blocks []model.PlannedBlock, ref time.Time) [7]WeekDay {
	today := model.DateOf(ref)
	start := today.AddDays(-int(today.Weekday()))

	var week [7]WeekDay
	for i := range week {
		week[i].Date = start.AddDays(i)
		week[i].Weekday = time.Weekday(i)
	}
	for _, b := range blocks {
		if !b.IsActive || b.DayOfWeek < time.Sunday || b.DayOfWeek > time.Saturday {
			continue
		}
		week[b.DayOfWeek].Blocks = append(week[b.DayOfWeek].Blocks, b)
	}
	for i := range week {
		day := week[i].Blocks
		sort.SliceStable(day, func(a, b int) bool { return day[a].StartTime < day[b].StartTime })
		week[i].Summary = Summarize(day)
	}
	return week
}
