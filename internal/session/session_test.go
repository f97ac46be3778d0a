package session

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newSession() model.Session {
	return model.Session{ID: "s1", Title: "Write report", StartTime: t0}
}

func at(secs int) time.Time {
	return t0.Add(time.Duration(secs) * time.Second)
}

func TestPauseResumeEnd(t *testing.T) {
	s := newSession()
	s, err := Pause(s, at(600))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !s.IsPaused || s.PausedAt == nil || s.BreakCount != 1 {
		t.Fatalf("unexpected paused state: %+v", s)
	}
	if s.TotalBreakTime != 0 {
		t.Fatalf("pause must not add break time, got %d", s.TotalBreakTime)
	}
	s, err = Resume(s, at(900))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.IsPaused || s.PausedAt != nil {
		t.Fatalf("expected pause cleared: %+v", s)
	}
	if s.TotalBreakTime != 300 {
		t.Fatalf("expected 300s break, got %d", s.TotalBreakTime)
	}
	s, summary, err := Finalize(s, at(2000), "done")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if summary.Duration != 1700 || s.Duration != 1700 {
		t.Fatalf("expected duration 1700, got summary=%d session=%d", summary.Duration, s.Duration)
	}
	if summary.BreakCount != 1 || summary.TotalBreakTime != 300 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !s.Completed || s.EndTime == nil || !s.EndTime.Equal(at(2000)) || s.Notes != "done" {
		t.Fatalf("unexpected completed session: %+v", s)
	}
	if summary.Clamped {
		t.Fatalf("did not expect clamping")
	}
}

func TestFinalizeWhilePaused(t *testing.T) {
	s := newSession()
	s, err := Pause(s, at(1000))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	s, summary, err := Finalize(s, at(1500), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if summary.Duration != 1000 {
		t.Fatalf("expected duration 1000, got %d", summary.Duration)
	}
	if s.TotalBreakTime != 500 || s.BreakCount != 1 {
		t.Fatalf("expected 500s break over 1 pause, got %d over %d", s.TotalBreakTime, s.BreakCount)
	}
	if s.IsPaused || s.PausedAt != nil {
		t.Fatalf("expected pause state cleared")
	}
}

func TestFinalizeWithoutPauses(t *testing.T) {
	for _, secs := range []int{1, 59, 3600, 86399} {
		s, summary, err := Finalize(newSession(), at(secs), "")
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if summary.Duration != int64(secs) || s.Duration != int64(secs) {
			t.Fatalf("expected %d, got %d", secs, summary.Duration)
		}
	}
}

func TestBreakConservation(t *testing.T) {
	s := newSession()
	events := []struct {
		pause, resume int
	}{
		{100, 160},
		{500, 501},
		{900, 1400},
	}
	var err error
	for _, ev := range events {
		if s, err = Pause(s, at(ev.pause)); err != nil {
			t.Fatalf("pause: %v", err)
		}
		if s, err = Resume(s, at(ev.resume)); err != nil {
			t.Fatalf("resume: %v", err)
		}
	}
	s, summary, err := Finalize(s, at(3000), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if summary.Duration+summary.TotalBreakTime != 3000 {
		t.Fatalf("duration+breaks = %d, want 3000", summary.Duration+summary.TotalBreakTime)
	}
	if s.BreakCount != 3 {
		t.Fatalf("expected 3 breaks, got %d", s.BreakCount)
	}
}

func TestSubSecondPausesFloor(t *testing.T) {
	s := newSession()
	var err error
	for i := 0; i < 10; i++ {
		base := t0.Add(time.Duration(i) * 10 * time.Second)
		if s, err = Pause(s, base); err != nil {
			t.Fatalf("pause: %v", err)
		}
		if s, err = Resume(s, base.Add(900*time.Millisecond)); err != nil {
			t.Fatalf("resume: %v", err)
		}
	}
	if s.TotalBreakTime != 0 {
		t.Fatalf("expected floored break time 0, got %d", s.TotalBreakTime)
	}
}

func TestInvalidTransitions(t *testing.T) {
	active := newSession()
	paused, err := Pause(active, at(10))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	completed, _, err := Finalize(active, at(20), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	cases := []struct {
		name string
		run  func() error
		want State
	}{
		{"pause paused", func() error { _, err := Pause(paused, at(30)); return err }, StatePaused},
		{"resume active", func() error { _, err := Resume(active, at(30)); return err }, StateActive},
		{"pause completed", func() error { _, err := Pause(completed, at(30)); return err }, StateCompleted},
		{"resume completed", func() error { _, err := Resume(completed, at(30)); return err }, StateCompleted},
		{"end completed", func() error { _, _, err := Finalize(completed, at(30), ""); return err }, StateCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			if !errors.Is(err, ErrInvalidStateTransition) {
				t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
			}
			var te *TransitionError
			if !errors.As(err, &te) || te.State != tc.want {
				t.Fatalf("expected state %s, got %v", tc.want, err)
			}
		})
	}
}

func TestFinalizeClampsNegativeDuration(t *testing.T) {
	s := newSession()
	s.TotalBreakTime = 500
	s, summary, err := Finalize(s, at(200), "")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !summary.Clamped || summary.ClampedSeconds != 300 {
		t.Fatalf("expected clamp of 300s, got %+v", summary)
	}
	if summary.Duration != 0 || s.Duration != 0 {
		t.Fatalf("expected clamped duration 0, got %d", s.Duration)
	}
}

func TestResumeBeforePauseDoesNotReduceBreaks(t *testing.T) {
	s := newSession()
	s.TotalBreakTime = 40
	s, err := Pause(s, at(100))
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	s, err = Resume(s, at(90))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.TotalBreakTime != 40 {
		t.Fatalf("expected break time unchanged, got %d", s.TotalBreakTime)
	}
}

func TestElapsed(t *testing.T) {
	s := newSession()
	if got := Elapsed(s, at(125)); got != 125 {
		t.Fatalf("expected 125, got %d", got)
	}
	s, _ = Pause(s, at(100))
	if got := Elapsed(s, at(160)); got != 100 {
		t.Fatalf("expected elapsed frozen at 100 while paused, got %d", got)
	}
	if got := BreakSeconds(s, at(160)); got != 60 {
		t.Fatalf("expected 60s open break, got %d", got)
	}
	s, _ = Resume(s, at(160))
	if got := Elapsed(s, at(200)); got != 140 {
		t.Fatalf("expected 140, got %d", got)
	}
}
