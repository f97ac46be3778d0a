package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC)
	starts := []time.Time{
		time.Date(2024, 3, 6, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC),
	}
	var all []model.Session
	for i, start := range starts {
		s := done(start, 1800)
		s.Title = "Session"
		s.IsPlanned = i%2 == 0
		all = append(all, s)
	}

	report := BuildReport(ReportInput{
		Now:      now,
		Sessions: all,
		Page:     all[:2],
		Total:    len(all),
	})
	if report.History.SessionCount != 4 || report.History.TotalHours != 2 {
		t.Fatalf("unexpected history: %+v", report.History)
	}
	if report.History.Streaks.Current != 3 {
		t.Fatalf("expected current streak 3, got %+v", report.History.Streaks)
	}
	if len(report.Week) != 7 || WeekTotalHours(report.Week) != 1.5 {
		t.Fatalf("unexpected week: %+v", report.Week)
	}
	if report.Insights.CompletionRate != 50 {
		t.Fatalf("unexpected completion rate: %d", report.Insights.CompletionRate)
	}
	if len(report.Sessions) != 2 || report.Total != 4 || !report.HasMore {
		t.Fatalf("unexpected page: %d sessions, total %d, more %v", len(report.Sessions), report.Total, report.HasMore)
	}
	if report.Groups[0].Label != "Today" {
		t.Fatalf("expected newest group first, got %q", report.Groups[0].Label)
	}
	if len(report.Daily) != DefaultSparkDays {
		t.Fatalf("expected %d daily values, got %d", DefaultSparkDays, len(report.Daily))
	}

	prev := BuildReport(ReportInput{Now: now, WeekOffset: -1, Sessions: all, Page: all, Total: len(all)})
	if WeekTotalHours(prev.Week) != 0.5 || prev.HasMore {
		t.Fatalf("unexpected previous week report: %+v", prev.Week)
	}
}

func TestBuildReportUsesLocationOfNow(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	// Tuesday 20:00 UTC is Wednesday 05:00 in Tokyo.
	s := done(time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC), 1800)
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, tokyo)

	report := BuildReport(ReportInput{
		Now:      now,
		Sessions: []model.Session{s},
		Page:     []model.Session{s},
		Total:    1,
	})
	if report.Insights.BestDay.Weekday != time.Wednesday {
		t.Fatalf("expected Wednesday, got %+v", report.Insights.BestDay)
	}
	if report.Insights.PeakHours.StartHour != 3 {
		t.Fatalf("expected 3 AM window, got %+v", report.Insights.PeakHours)
	}
	if len(report.Groups) != 1 || report.Groups[0].Label != "Today" {
		t.Fatalf("expected a Today group, got %+v", report.Groups)
	}
	if report.History.Streaks.Current != 1 {
		t.Fatalf("expected streak 1, got %+v", report.History.Streaks)
	}
	if report.Sessions[0].StartTime.Location() != tokyo {
		t.Fatalf("page sessions should be in the report location")
	}
	if report.Week[3].Seconds != 1800 {
		t.Fatalf("expected focus on Wednesday bucket, got %+v", report.Week)
	}
}
