package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// ComputeHistory summarises completed sessions as of today.
func ComputeHistory(sessions []model.Session, today model.Date) model.HistoryStats {
	var total int64
	count := 0
	completed := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		total += s.Duration
		count++
		completed = append(completed, s)
	}
	out := model.HistoryStats{
		TotalSeconds: total,
		TotalHours:   round1(secondsToHours(total)),
		Streaks:      ComputeStreaks(SessionDates(completed), today),
		SessionCount: count,
	}
	if count > 0 {
		out.AvgMinutes = int(math.Round(float64(total) / float64(count) / 60))
	}
	return out
}

// ComputeToday summarises the completed sessions that started on today.
func ComputeToday(sessions []model.Session, today model.Date, weeklyGoalHours int) model.TodayStats {
	out := model.TodayStats{Target: fmt.Sprintf("%dh", weeklyGoalHours)}
	for _, s := range sessions {
		if !s.Completed || model.DateOf(s.StartTime) != today {
			continue
		}
		out.SessionsToday++
		out.FocusSeconds += s.Duration
	}
	out.FocusTime = FormatFocusTime(out.FocusSeconds)
	return out
}

// FormatFocusTime renders seconds as "1h 5m" or "5m".
func FormatFocusTime(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatClock renders seconds as HH:MM:SS for timers.
func FormatClock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// DateGroup is a run of sessions sharing a start date.
type DateGroup struct {
	Label    string
	Date     model.Date
	Sessions []model.Session
}

// GroupByDate groups sessions by start date, preserving input order.
// Labels are "Today", "Yesterday" or "Jan 2".
func GroupByDate(sessions []model.Session, today model.Date) []DateGroup {
	var groups []DateGroup
	index := map[model.Date]int{}
	for _, s := range sessions {
		d := model.DateOf(s.StartTime)
		i, ok := index[d]
		if !ok {
			groups = append(groups, DateGroup{Label: DateLabel(d, today), Date: d})
			i = len(groups) - 1
			index[d] = i
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
	}
	return groups
}

// DateLabel names d relative to today.
func DateLabel(d, today model.Date) string {
	switch today.DaysSince(d) {
	case 0:
		return "Today"
	case 1:
		return "Yesterday"
	default:
		return d.In(time.UTC).Format("Jan 2")
	}
}
