package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

var shortDayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekWindow returns the Sunday-midnight start and exclusive end of the week
// containing ref shifted by offset weeks, in ref's location.
func WeekWindow(ref time.Time, offset int) (start, end time.Time) {
	y, m, d := ref.Date()
	loc := ref.Location()
	shifted := time.Date(y, m, d+7*offset, 0, 0, 0, 0, loc)
	start = time.Date(shifted.Year(), shifted.Month(), shifted.Day()-int(shifted.Weekday()), 0, 0, 0, 0, loc)
	end = time.Date(start.Year(), start.Month(), start.Day()+7, 0, 0, 0, 0, loc)
	return start, end
}

// ComputeWeek buckets completed sessions into the 7 days of the selected week.
// It always returns exactly 7 buckets, Sunday first.
func ComputeWeek(sessions []model.Session, ref time.Time, offset int) []model.DayBucket {
	start, end := WeekWindow(ref, offset)
	startDate := model.DateOf(start)
	loc := ref.Location()

	buckets := make([]model.DayBucket, 7)
	for i := range buckets {
		buckets[i].Day = shortDayNames[i]
		buckets[i].Date = startDate.AddDays(i).String()
	}
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		if s.StartTime.Before(start) || !s.StartTime.Before(end) {
			continue
		}
		idx := model.DateOf(s.StartTime.In(loc)).DaysSince(startDate)
		if idx < 0 || idx > 6 {
			continue
		}
		buckets[idx].Seconds += s.Duration
	}
	for i := range buckets {
		buckets[i].Hours = round1(secondsToHours(buckets[i].Seconds))
	}
	return buckets
}

// WeekTotalHours sums the buckets' seconds and rounds once.
func WeekTotalHours(buckets []model.DayBucket) float64 {
	var total int64
	for _, b := range buckets {
		total += b.Seconds
	}
	return round1(secondsToHours(total))
}

func secondsToHours(secs int64) float64 {
	return float64(secs) / 3600
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
