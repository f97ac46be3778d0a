// Package session implements break accounting for a focus session lifecycle.
//
// All functions are pure: they take a snapshot of a session and return the
// next state. Callers own persistence and must serialise access per session.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

// ErrInvalidStateTransition is returned when an operation's precondition fails.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// State is the lifecycle state of a session.
type State int

// Session states.
const (
	StateActive State = iota
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// StateOf reports the lifecycle state of s.
func StateOf(s model.Session) State {
	switch {
	case s.Completed:
		return StateCompleted
	case s.IsPaused:
		return StatePaused
	default:
		return StateActive
	}
}

// TransitionError describes a rejected operation.
type TransitionError struct {
	Op        string
	SessionID string
	State     State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s session %s: session is %s", e.Op, e.SessionID, e.State)
}

// Unwrap allows errors.Is(err, ErrInvalidStateTransition).
func (e *TransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

// Pause marks an active session as paused at now and counts one break.
// Break time is only added on Resume or Finalize.
func Pause(s model.Session, now time.Time) (model.Session, error) {
	if st := StateOf(s); st != StateActive {
		return s, &TransitionError{Op: "pause", SessionID: s.ID, State: st}
	}
	at := now
	s.IsPaused = true
	s.PausedAt = &at
	s.BreakCount++
	s.UpdatedAt = now
	return s, nil
}

// Resume folds the open pause interval into TotalBreakTime.
func Resume(s model.Session, now time.Time) (model.Session, error) {
	if st := StateOf(s); st != StatePaused {
		return s, &TransitionError{Op: "resume", SessionID: s.ID, State: st}
	}
	s.TotalBreakTime += openPauseSeconds(s, now)
	s.IsPaused = false
	s.PausedAt = nil
	s.UpdatedAt = now
	return s, nil
}

// Finalize completes the session at now.
//
// A pause still open at now is folded into the break total without counting
// another break. Duration is elapsed minus breaks; when breaks exceed elapsed
// time the duration is clamped to 0 and the summary reports Clamped.
func Finalize(s model.Session, now time.Time, notes string) (model.Session, model.EndSummary, error) {
	st := StateOf(s)
	if st == StateCompleted {
		return s, model.EndSummary{}, &TransitionError{Op: "end", SessionID: s.ID, State: st}
	}
	breaks := s.TotalBreakTime
	if st == StatePaused {
		breaks += openPauseSeconds(s, now)
	}
	elapsed := floorSeconds(now.Sub(s.StartTime))
	net := elapsed - breaks

	summary := model.EndSummary{
		ID:             s.ID,
		Title:          s.Title,
		TotalBreakTime: breaks,
		BreakCount:     s.BreakCount,
	}
	if net < 0 {
		summary.Clamped = true
		summary.ClampedSeconds = -net
		net = 0
	}
	summary.Duration = net

	end := now
	s.EndTime = &end
	s.Duration = net
	s.TotalBreakTime = breaks
	s.Completed = true
	s.IsPaused = false
	s.PausedAt = nil
	s.Notes = notes
	s.UpdatedAt = now
	return s, summary, nil
}

// Elapsed returns the net focus seconds of s as of now.
// For a completed session it returns the stored Duration.
func Elapsed(s model.Session, now time.Time) int64 {
	if s.Completed {
		return s.Duration
	}
	breaks := s.TotalBreakTime
	if s.IsPaused {
		breaks += openPauseSeconds(s, now)
	}
	net := floorSeconds(now.Sub(s.StartTime)) - breaks
	if net < 0 {
		return 0
	}
	return net
}

// BreakSeconds returns the break total of s as of now, including an open pause.
func BreakSeconds(s model.Session, now time.Time) int64 {
	if s.IsPaused && !s.Completed {
		return s.TotalBreakTime + openPauseSeconds(s, now)
	}
	return s.TotalBreakTime
}

// openPauseSeconds never returns a negative value so TotalBreakTime stays non-decreasing.
func openPauseSeconds(s model.Session, now time.Time) int64 {
	if s.PausedAt == nil {
		return 0
	}
	secs := floorSeconds(now.Sub(*s.PausedAt))
	if secs < 0 {
		return 0
	}
	return secs
}

func floorSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second < 0 {
		secs--
	}
	return secs
}
