package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/notify"
	"github.com/verte-zerg/focuspulse/internal/session"
	"github.com/verte-zerg/focuspulse/internal/stats"
	"github.com/verte-zerg/focuspulse/internal/store"
)

type startInput struct {
	Title string `validate:"required,max=200"`
}

type endInput struct {
	Notes string `validate:"max=1000"`
}

// StartSession opens a new session for userID.
func (s *Service) StartSession(ctx context.Context, userID, title string, planned bool) (model.Session, error) {
	in := startInput{Title: strings.TrimSpace(title)}
	if err := validate.Struct(in); err != nil {
		return model.Session{}, fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	now := s.Now()
	created, err := s.store.CreateSession(ctx, model.Session{
		UserID:    userID,
		Title:     in.Title,
		StartTime: now,
		IsPlanned: planned,
		CreatedAt: now,
	})
	if err != nil {
		return model.Session{}, err
	}
	s.logger.Debug("session started", "session_id", created.ID, "user_id", userID, "planned", planned)
	return created, nil
}

// ActiveSession returns the user's open session. ok is false when there is none.
func (s *Service) ActiveSession(ctx context.Context, userID string) (model.Session, bool, error) {
	sess, err := s.store.ActiveSession(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Session{}, false, nil
	}
	if err != nil {
		return model.Session{}, false, err
	}
	return sess, true, nil
}

// PauseSession pauses the session with id, or the active session when id is empty.
func (s *Service) PauseSession(ctx context.Context, userID, id string) (model.Session, error) {
	return s.transition(ctx, userID, id, "paused", session.Pause)
}

// ResumeSession resumes the session with id, or the active session when id is empty.
func (s *Service) ResumeSession(ctx context.Context, userID, id string) (model.Session, error) {
	return s.transition(ctx, userID, id, "resumed", session.Resume)
}

func (s *Service) transition(
	ctx context.Context,
	userID, id, verb string,
	apply func(model.Session, time.Time) (model.Session, error),
) (model.Session, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	var next model.Session
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		cur, err := loadSession(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		next, err = apply(cur, s.Now())
		if err != nil {
			return err
		}
		return tx.SaveSession(ctx, next)
	})
	if err != nil {
		return model.Session{}, err
	}
	s.logger.Debug("session "+verb,
		"session_id", next.ID,
		"break_count", next.BreakCount,
		"total_break_time", next.TotalBreakTime)
	return next, nil
}

// EndSession completes the session with id, or the active session when id is empty.
func (s *Service) EndSession(ctx context.Context, userID, id, notes string) (model.EndSummary, error) {
	in := endInput{Notes: strings.TrimSpace(notes)}
	if err := validate.Struct(in); err != nil {
		return model.EndSummary{}, fmt.Errorf("%w: notes must be at most 1000 characters", ErrInvalidInput)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	var (
		ended   model.Session
		summary model.EndSummary
	)
	now := s.Now()
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		cur, err := loadSession(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		ended, summary, err = session.Finalize(cur, now, in.Notes)
		if err != nil {
			return err
		}
		return tx.SaveSession(ctx, ended)
	})
	if err != nil {
		return model.EndSummary{}, err
	}

	if summary.Clamped {
		s.logger.Warn("negative duration clamped",
			"session_id", summary.ID,
			"elapsed", summary.TotalBreakTime-summary.ClampedSeconds,
			"break_seconds", summary.TotalBreakTime,
			"clamped_seconds", summary.ClampedSeconds)
	}
	s.logger.Info("session ended",
		"session_id", summary.ID,
		"duration", summary.Duration,
		"total_break_time", summary.TotalBreakTime,
		"break_count", summary.BreakCount)

	s.announce(ctx, userID, ended, summary)
	return summary, nil
}

func (s *Service) announce(ctx context.Context, userID string, ended model.Session, summary model.EndSummary) {
	if s.cfg.Notify {
		title, msg := notify.SessionEnded(summary.Title, stats.FormatFocusTime(summary.Duration))
		if err := s.notifier.Notify(title, msg); err != nil {
			s.logger.Warn("notification failed", "error", err)
		}
	}
	if !s.cfg.StreakAlerts {
		return
	}
	all, err := s.store.ListCompletedSessions(ctx, userID, model.HistoryFilter{})
	if err != nil {
		s.logger.Warn("streak check failed", "error", err)
		return
	}
	day := model.DateOf(ended.StartTime.In(s.loc))
	sameDay := 0
	for _, sess := range all {
		if model.DateOf(sess.StartTime.In(s.loc)) == day {
			sameDay++
		}
	}
	// Only the first session of a day can extend the streak.
	if sameDay != 1 {
		return
	}
	streaks := stats.ComputeStreaks(stats.SessionDates(inLocation(all, s.loc)), model.DateOf(s.Now()))
	if !notify.IsMilestone(streaks.Current) {
		return
	}
	title, msg := notify.StreakReached(streaks.Current)
	if err := s.notifier.Notify(title, msg); err != nil {
		s.logger.Warn("notification failed", "error", err)
	}
}

func loadSession(ctx context.Context, st *store.Store, userID, id string) (model.Session, error) {
	if id == "" {
		sess, err := st.ActiveSession(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return model.Session{}, ErrNoActiveSession
		}
		return sess, err
	}
	return st.GetSession(ctx, userID, id)
}

func inLocation(sessions []model.Session, loc *time.Location) []model.Session {
	out := make([]model.Session, len(sessions))
	for i, sess := range sessions {
		sess.StartTime = sess.StartTime.In(loc)
		out[i] = sess
	}
	return out
}
