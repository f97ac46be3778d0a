// Package model defines shared data structures.
package model

import "time"

// Config defines resolved application settings.
type Config struct {
	User             string
	DBPath           string
	Timezone         string
	WeeklyGoalHours  int
	DefaultTitle     string
	DefaultBlockMins int
	Notify           bool
	StreakAlerts     bool
	LogLevel         string
	LogFormat        string
}

// Session is a single focus-work attempt.
//
// Duration and EndTime are only meaningful once Completed is true.
// PausedAt is non-nil iff IsPaused is true.
type Session struct {
	ID             string
	UserID         string
	Title          string
	StartTime      time.Time
	EndTime        *time.Time
	Duration       int64 // net focus seconds
	TotalBreakTime int64 // seconds
	BreakCount     int
	IsPaused       bool
	PausedAt       *time.Time
	Completed      bool
	IsPlanned      bool
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PlannedBlock is a recurring weekly commitment.
type PlannedBlock struct {
	ID          string
	UserID      string
	Title       string
	DayOfWeek   time.Weekday
	StartTime   string // HH:MM
	Duration    int    // minutes
	IsRecurring bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionType filters history by origin.
type SessionType string

// Session type filters.
const (
	SessionTypeAll     SessionType = "all"
	SessionTypePlanned SessionType = "planned"
	SessionTypeAdhoc   SessionType = "adhoc"
)

// HistoryFilter selects completed sessions for listing.
type HistoryFilter struct {
	Query  string
	Type   SessionType
	Limit  int
	Offset int
}

// DayBucket is one day of a weekly window.
type DayBucket struct {
	Day     string // Sun..Sat
	Date    string // YYYY-MM-DD
	Seconds int64
	Hours   float64 // rounded to one decimal
}

// Streaks holds consecutive-day engagement counts.
type Streaks struct {
	Current int
	Longest int
}

// BestDay is the weekday with the highest mean focus hours.
type BestDay struct {
	Day      string
	Weekday  time.Weekday
	AvgHours float64
	Found    bool
}

// PeakHours is the 3-hour window with the most session starts.
type PeakHours struct {
	Range      string
	StartHour  int
	Percentage int
	Found      bool
}

// Insights summarises all completed sessions.
type Insights struct {
	BestDay        BestDay
	PeakHours      PeakHours
	CompletionRate int
}

// HistoryStats summarises all completed sessions for a user.
type HistoryStats struct {
	TotalSeconds int64
	TotalHours   float64
	Streaks      Streaks
	SessionCount int
	AvgMinutes   int
}

// TodayStats summarises sessions completed today.
type TodayStats struct {
	SessionsToday int
	FocusSeconds  int64
	FocusTime     string
	Target        string
}

// EndSummary is returned when a session is finalized.
type EndSummary struct {
	ID             string
	Title          string
	Duration       int64
	TotalBreakTime int64
	BreakCount     int
	Clamped        bool  // breaks exceeded elapsed time; Duration forced to 0
	ClampedSeconds int64 // amount by which breaks exceeded elapsed time
}
