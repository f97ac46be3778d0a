package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/focuspulse/internal/model"
)

const sparkChars = " .:-=+*#%@"

// DailySeries returns focus hours per day for the days ending at last (inclusive).
func DailySeries(sessions []model.Session, last model.Date, days int) []float64 {
	if days <= 0 {
		return nil
	}
	first := last.AddDays(-(days - 1))
	out := make([]float64, days)
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		idx := model.DateOf(s.StartTime).DaysSince(first)
		if idx < 0 || idx >= days {
			continue
		}
		out[idx] += secondsToHours(s.Duration)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline scaled from zero to the max value.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal < 1e-9 {
		return strings.Repeat(string(sparkChars[0]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(v / maxVal * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints all-time history stats.
func RenderSummary(w io.Writer, h model.HistoryStats) error {
	if h.SessionCount == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", h.SessionCount),
		fmt.Sprintf("Total focus: %.1fh", h.TotalHours),
		fmt.Sprintf("Avg session: %dm", h.AvgMinutes),
		fmt.Sprintf("Current streak: %s", dayCount(h.Streaks.Current)),
		fmt.Sprintf("Longest streak: %s", dayCount(h.Streaks.Longest)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderInsights prints best day, peak hours and planned share.
func RenderInsights(w io.Writer, in model.Insights) error {
	lines := []string{
		"Insights",
		fmt.Sprintf("Best day: %s (%.1fh avg)", in.BestDay.Day, in.BestDay.AvgHours),
		fmt.Sprintf("Peak hours: %s (%d%% of sessions)", in.PeakHours.Range, in.PeakHours.Percentage),
		fmt.Sprintf("Planned sessions: %d%%", in.CompletionRate),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderWeek prints the weekly chart with a header and total.
func RenderWeek(w io.Writer, buckets []model.DayBucket, today model.Date, totalWidth int, useColor bool) error {
	if len(buckets) == 0 {
		return nil
	}
	header := fmt.Sprintf("Week of %s  (total %.1fh)", buckets[0].Date, WeekTotalHours(buckets))
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if err := RenderWeekChart(w, buckets, today, totalWidth, useColor); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSessions prints sessions grouped by date label.
func RenderSessions(w io.Writer, groups []DateGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"Start", "End", "Focus", "Breaks", "Type", "Title"}
	rightAlign := map[int]bool{2: true, 3: true}
	for _, g := range groups {
		if _, err := fmt.Fprintln(w, g.Label); err != nil {
			return err
		}
		rows := make([][]string, 0, len(g.Sessions))
		for _, s := range g.Sessions {
			rows = append(rows, SessionRow(s))
		}
		for _, line := range FormatTable(headers, rows, rightAlign) {
			if _, err := fmt.Fprintln(w, "  "+line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

// SessionRow formats a completed session as table cells.
func SessionRow(s model.Session) []string {
	end := "-"
	if s.EndTime != nil {
		end = s.EndTime.In(s.StartTime.Location()).Format("3:04 PM")
	}
	kind := "adhoc"
	if s.IsPlanned {
		kind = "planned"
	}
	return []string{
		s.StartTime.Format("3:04 PM"),
		end,
		fmt.Sprintf("%dm", int(math.Round(float64(s.Duration)/60))),
		fmt.Sprintf("%d", s.BreakCount),
		kind,
		s.Title,
	}
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
