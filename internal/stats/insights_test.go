package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

func at(day, hour int) time.Time {
	// March 3 2024 is a Sunday, so day doubles as the weekday index.
	return time.Date(2024, 3, 3+day, hour, 0, 0, 0, time.UTC)
}

func TestInsightsEmpty(t *testing.T) {
	in := ComputeInsights(nil)
	if in.BestDay.AvgHours != 0 || in.BestDay.Found || in.BestDay.Day != "N/A" {
		t.Fatalf("unexpected best day: %+v", in.BestDay)
	}
	if in.PeakHours.Percentage != 0 || in.PeakHours.Found || in.PeakHours.Range != "N/A" {
		t.Fatalf("unexpected peak hours: %+v", in.PeakHours)
	}
	if in.CompletionRate != 0 {
		t.Fatalf("unexpected completion rate: %d", in.CompletionRate)
	}
}

func TestInsightsIgnoreOpenSessions(t *testing.T) {
	in := ComputeInsights([]model.Session{{StartTime: at(1, 9), Duration: 3600, IsPlanned: true}})
	if in.BestDay.Found || in.PeakHours.Found || in.CompletionRate != 0 {
		t.Fatalf("open session must not count: %+v", in)
	}
}

func TestBestDayUsesMean(t *testing.T) {
	sessions := []model.Session{
		done(at(2, 9), 1800),
		done(at(2, 10), 1800),
		done(at(2, 11), 1800),
		done(at(4, 9), 3600),
	}
	got := ComputeInsights(sessions).BestDay
	if got.Weekday != time.Thursday || got.Day != "Thursday" || got.AvgHours != 1 {
		t.Fatalf("expected thursday with 1h avg, got %+v", got)
	}
}

func TestBestDayTieKeepsLowestWeekday(t *testing.T) {
	sessions := []model.Session{
		done(at(3, 9), 3600),
		done(at(1, 9), 3600),
		done(at(5, 9), 1800),
	}
	got := ComputeInsights(sessions).BestDay
	if got.Weekday != time.Monday {
		t.Fatalf("expected monday on tie, got %+v", got)
	}
}

func TestPeakHours(t *testing.T) {
	sessions := []model.Session{
		done(at(1, 9), 600),
		done(at(2, 10), 600),
		done(at(3, 11), 600),
		done(at(4, 14), 600),
	}
	got := ComputeInsights(sessions).PeakHours
	if got.StartHour != 9 || got.Range != "9 AM-12 PM" || got.Percentage != 75 {
		t.Fatalf("unexpected peak hours: %+v", got)
	}
}

func TestPeakHoursTieKeepsEarliestWindow(t *testing.T) {
	sessions := []model.Session{done(at(1, 20), 600), done(at(1, 1), 600)}
	got := ComputeInsights(sessions).PeakHours
	if got.StartHour != 0 || got.Range != "12 AM-3 AM" || got.Percentage != 50 {
		t.Fatalf("unexpected peak hours: %+v", got)
	}
}

func TestPeakHoursLateWindow(t *testing.T) {
	got := ComputeInsights([]model.Session{done(at(1, 23), 600)}).PeakHours
	if got.StartHour != 21 || got.Range != "9 PM-12 AM" || got.Percentage != 100 {
		t.Fatalf("unexpected peak hours: %+v", got)
	}
}

func TestCompletionRate(t *testing.T) {
	planned := done(at(1, 9), 600)
	planned.IsPlanned = true
	sessions := []model.Session{planned, done(at(1, 10), 600), done(at(1, 11), 600)}
	if got := ComputeInsights(sessions).CompletionRate; got != 33 {
		t.Fatalf("expected 33%%, got %d", got)
	}
}

func TestFormatHour(t *testing.T) {
	cases := map[int]string{0: "12 AM", 9: "9 AM", 12: "12 PM", 15: "3 PM", 24: "12 AM"}
	for h, want := range cases {
		if got := FormatHour(h); got != want {
			t.Fatalf("FormatHour(%d) = %q, want %q", h, got, want)
		}
	}
}
