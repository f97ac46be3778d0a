package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

const peakWindowHours = 3

// ComputeInsights derives best day, peak hours and planned share over all
// completed sessions. An empty input yields zero values labelled "N/A".
func ComputeInsights(sessions []model.Session) model.Insights {
	completed := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Completed {
			completed = append(completed, s)
		}
	}
	return model.Insights{
		BestDay:        bestDay(completed),
		PeakHours:      peakHours(completed),
		CompletionRate: completionRate(completed),
	}
}

func bestDay(sessions []model.Session) model.BestDay {
	var secs [7]int64
	var counts [7]int
	for _, s := range sessions {
		wd := s.StartTime.Weekday()
		secs[wd] += s.Duration
		counts[wd]++
	}
	best := model.BestDay{Day: "N/A"}
	bestAvg := -1.0
	for wd := 0; wd < 7; wd++ {
		if counts[wd] == 0 {
			continue
		}
		avg := secondsToHours(secs[wd]) / float64(counts[wd])
		if avg > bestAvg {
			bestAvg = avg
			best = model.BestDay{
				Day:      time.Weekday(wd).String(),
				Weekday:  time.Weekday(wd),
				AvgHours: round1(avg),
				Found:    true,
			}
		}
	}
	return best
}

func peakHours(sessions []model.Session) model.PeakHours {
	if len(sessions) == 0 {
		return model.PeakHours{Range: "N/A"}
	}
	var hours [24]int
	for _, s := range sessions {
		hours[s.StartTime.Hour()]++
	}
	bestStart, bestCount := 0, 0
	for h := 0; h <= 24-peakWindowHours; h++ {
		count := 0
		for k := 0; k < peakWindowHours; k++ {
			count += hours[h+k]
		}
		if count > bestCount {
			bestStart, bestCount = h, count
		}
	}
	return model.PeakHours{
		Range:      fmt.Sprintf("%s-%s", FormatHour(bestStart), FormatHour(bestStart+peakWindowHours)),
		StartHour:  bestStart,
		Percentage: percent(bestCount, len(sessions)),
		Found:      true,
	}
}

func completionRate(sessions []model.Session) int {
	planned := 0
	for _, s := range sessions {
		if s.IsPlanned {
			planned++
		}
	}
	return percent(planned, len(sessions))
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// FormatHour renders an hour of day (0-24) as "9 AM" / "12 PM".
func FormatHour(hour int) string {
	hour %= 24
	switch {
	case hour == 0:
		return "12 AM"
	case hour == 12:
		return "12 PM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
