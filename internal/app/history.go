package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/stats"
)

// DefaultHistoryLimit is the page size used when a filter has no limit.
const DefaultHistoryLimit = 20

// HistoryPage is one page of completed sessions.
type HistoryPage struct {
	Sessions []model.Session
	Groups   []stats.DateGroup
	Total    int
	HasMore  bool
}

// TodayStats summarises sessions that started today.
func (s *Service) TodayStats(ctx context.Context, userID string) (model.TodayStats, error) {
	now := s.Now()
	today := model.DateOf(now)
	start := today.In(s.loc)
	end := today.AddDays(1).In(s.loc)
	sessions, err := s.store.ListCompletedBetween(ctx, userID, start, end)
	if err != nil {
		return model.TodayStats{}, err
	}
	return stats.ComputeToday(inLocation(sessions, s.loc), today, s.cfg.WeeklyGoalHours), nil
}

// HistoryStats summarises all completed sessions.
func (s *Service) HistoryStats(ctx context.Context, userID string) (model.HistoryStats, error) {
	all, err := s.allCompleted(ctx, userID)
	if err != nil {
		return model.HistoryStats{}, err
	}
	return stats.ComputeHistory(all, model.DateOf(s.Now())), nil
}

// Insights derives best day, peak hours and planned share from all completed sessions.
func (s *Service) Insights(ctx context.Context, userID string) (model.Insights, error) {
	all, err := s.allCompleted(ctx, userID)
	if err != nil {
		return model.Insights{}, err
	}
	return stats.ComputeInsights(all), nil
}

// Week buckets completed sessions of the week offset weeks from now.
func (s *Service) Week(ctx context.Context, userID string, offset int) ([]model.DayBucket, error) {
	now := s.Now()
	start, end := stats.WeekWindow(now, offset)
	sessions, err := s.store.ListCompletedBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return stats.ComputeWeek(inLocation(sessions, s.loc), now, offset), nil
}

// SessionsHistory returns one page of completed sessions, newest first.
func (s *Service) SessionsHistory(ctx context.Context, userID string, filter model.HistoryFilter) (HistoryPage, error) {
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return HistoryPage{}, err
	}
	sessions, err := s.store.ListCompletedSessions(ctx, userID, filter)
	if err != nil {
		return HistoryPage{}, err
	}
	total, err := s.store.CountCompletedSessions(ctx, userID, filter)
	if err != nil {
		return HistoryPage{}, err
	}
	sessions = inLocation(sessions, s.loc)
	return HistoryPage{
		Sessions: sessions,
		Groups:   stats.GroupByDate(sessions, model.DateOf(s.Now())),
		Total:    total,
		HasMore:  filter.Offset+len(sessions) < total,
	}, nil
}

// Report builds the full stats report used by the stats views.
func (s *Service) Report(ctx context.Context, userID string, weekOffset int, filter model.HistoryFilter) (stats.Report, error) {
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return stats.Report{}, err
	}
	all, err := s.allCompleted(ctx, userID)
	if err != nil {
		return stats.Report{}, err
	}
	page, err := s.store.ListCompletedSessions(ctx, userID, filter)
	if err != nil {
		return stats.Report{}, err
	}
	total, err := s.store.CountCompletedSessions(ctx, userID, filter)
	if err != nil {
		return stats.Report{}, err
	}
	return stats.BuildReport(stats.ReportInput{
		Now:        s.Now(),
		WeekOffset: weekOffset,
		Sessions:   all,
		Page:       inLocation(page, s.loc),
		Offset:     filter.Offset,
		Total:      total,
	}), nil
}

// NormalizeFilter applies the default limit and checks the session type.
func NormalizeFilter(f model.HistoryFilter) (model.HistoryFilter, error) {
	f.Query = strings.TrimSpace(f.Query)
	switch model.SessionType(strings.ToLower(string(f.Type))) {
	case "", model.SessionTypeAll:
		f.Type = model.SessionTypeAll
	case model.SessionTypePlanned:
		f.Type = model.SessionTypePlanned
	case model.SessionTypeAdhoc:
		f.Type = model.SessionTypeAdhoc
	default:
		return f, fmt.Errorf("%w: session type must be all, planned or adhoc", ErrInvalidInput)
	}
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

func (s *Service) allCompleted(ctx context.Context, userID string) ([]model.Session, error) {
	all, err := s.store.ListCompletedSessions(ctx, userID, model.HistoryFilter{})
	if err != nil {
		return nil, err
	}
	return inLocation(all, s.loc), nil
}
