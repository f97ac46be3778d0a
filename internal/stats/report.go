package stats

import (
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// DefaultSparkDays is the length of the daily focus sparkline.
const DefaultSparkDays = 30

// ReportInput carries the loaded sessions BuildReport works on.
type ReportInput struct {
	Now        time.Time
	WeekOffset int
	SparkDays  int

	// All completed sessions of the user.
	Sessions []model.Session
	// One page of filtered sessions, newest first.
	Page   []model.Session
	Offset int
	Total  int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Today    model.Date
	History  model.HistoryStats
	Insights model.Insights
	Week     []model.DayBucket
	Daily    []float64
	Sessions []model.Session
	Groups   []DateGroup
	Total    int
	HasMore  bool
}

// BuildReport prepares data for stats rendering. Days, hours and weeks are
// taken in the location of in.Now.
func BuildReport(in ReportInput) Report {
	loc := in.Now.Location()
	today := model.DateOf(in.Now)
	all := toLocation(in.Sessions, loc)
	page := toLocation(in.Page, loc)

	sparkDays := in.SparkDays
	if sparkDays <= 0 {
		sparkDays = DefaultSparkDays
	}

	return Report{
		Today:    today,
		History:  ComputeHistory(all, today),
		Insights: ComputeInsights(all),
		Week:     ComputeWeek(all, in.Now, in.WeekOffset),
		Daily:    DailySeries(all, today, sparkDays),
		Sessions: page,
		Groups:   GroupByDate(page, today),
		Total:    in.Total,
		HasMore:  max(in.Offset, 0)+len(page) < in.Total,
	}
}

func toLocation(sessions []model.Session, loc *time.Location) []model.Session {
	out := make([]model.Session, len(sessions))
	for i, s := range sessions {
		s.StartTime = s.StartTime.In(loc)
		if s.EndTime != nil {
			end := s.EndTime.In(loc)
			s.EndTime = &end
		}
		out[i] = s
	}
	return out
}
