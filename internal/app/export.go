package app

import (
	"context"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/planner"
	"github.com/verte-zerg/focuspulse/internal/store"
)

// Export is a snapshot of everything stored for one user.
type Export struct {
	UserID        string          `json:"userId"`
	Preferences   ExportPrefs     `json:"preferences"`
	Sessions      []ExportSession `json:"sessions"`
	PlannedBlocks []ExportBlock   `json:"plannedBlocks"`
	ExportedAt    time.Time       `json:"exportedAt"`
}

// ExportPrefs holds the settings in effect at export time.
type ExportPrefs struct {
	WeeklyGoalHours  int    `json:"weeklyGoalHours"`
	DefaultTitle     string `json:"defaultSessionTitle"`
	DefaultBlockMins int    `json:"defaultBlockMinutes"`
	Timezone         string `json:"timezone"`
	Notifications    bool   `json:"notifications"`
	StreakAlerts     bool   `json:"streakAlerts"`
}

// ExportSession is one session as written to an export.
type ExportSession struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime"`
	Duration       int64      `json:"duration"`
	Notes          string     `json:"notes,omitempty"`
	IsPlanned      bool       `json:"isPlanned"`
	Completed      bool       `json:"completed"`
	BreakCount     int        `json:"breakCount"`
	TotalBreakTime int64      `json:"totalBreakTime"`
}

// ExportBlock is one planned block as written to an export.
type ExportBlock struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DayOfWeek   int    `json:"dayOfWeek"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Duration    int    `json:"duration"`
	IsRecurring bool   `json:"isRecurring"`
	IsActive    bool   `json:"isActive"`
}

// Export collects all sessions (newest first) and planned blocks of userID.
func (s *Service) Export(ctx context.Context, userID string) (Export, error) {
	out := Export{
		UserID:        userID,
		Preferences:   s.exportPrefs(),
		Sessions:      []ExportSession{},
		PlannedBlocks: []ExportBlock{},
		ExportedAt:    s.Now(),
	}
	unlock := s.lockUser(userID)
	defer unlock()
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		sessions, err := tx.ListSessions(ctx, userID)
		if err != nil {
			return err
		}
		for _, sess := range inLocation(sessions, s.loc) {
			out.Sessions = append(out.Sessions, exportSession(sess, s.loc))
		}
		blocks, err := tx.ListBlocks(ctx, userID)
		if err != nil {
			return err
		}
		for _, b := range blocks {
			out.PlannedBlocks = append(out.PlannedBlocks, exportBlock(b))
		}
		return nil
	})
	if err != nil {
		return Export{}, err
	}
	s.logger.Debug("user data exported", "user", userID, "sessions", len(out.Sessions), "blocks", len(out.PlannedBlocks))
	return out, nil
}

func (s *Service) exportPrefs() ExportPrefs {
	return ExportPrefs{
		WeeklyGoalHours:  s.cfg.WeeklyGoalHours,
		DefaultTitle:     s.cfg.DefaultTitle,
		DefaultBlockMins: s.cfg.DefaultBlockMins,
		Timezone:         s.loc.String(),
		Notifications:    s.cfg.Notify,
		StreakAlerts:     s.cfg.StreakAlerts,
	}
}

func exportSession(sess model.Session, loc *time.Location) ExportSession {
	var end *time.Time
	if sess.EndTime != nil {
		t := sess.EndTime.In(loc)
		end = &t
	}
	return ExportSession{
		ID:             sess.ID,
		Title:          sess.Title,
		StartTime:      sess.StartTime,
		EndTime:        end,
		Duration:       sess.Duration,
		Notes:          sess.Notes,
		IsPlanned:      sess.IsPlanned,
		Completed:      sess.Completed,
		BreakCount:     sess.BreakCount,
		TotalBreakTime: sess.TotalBreakTime,
	}
}

func exportBlock(b model.PlannedBlock) ExportBlock {
	end, err := planner.EndTime(b.StartTime, b.Duration)
	if err != nil {
		end = ""
	}
	return ExportBlock{
		ID:          b.ID,
		Title:       b.Title,
		DayOfWeek:   int(b.DayOfWeek),
		StartTime:   b.StartTime,
		EndTime:     end,
		Duration:    b.Duration,
		IsRecurring: b.IsRecurring,
		IsActive:    b.IsActive,
	}
}
