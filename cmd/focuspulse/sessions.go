package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/focuspulse/internal/app"
	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/session"
	"github.com/verte-zerg/focuspulse/internal/stats"
	"github.com/verte-zerg/focuspulse/internal/store"
	"github.com/verte-zerg/focuspulse/internal/tui"
)

var (
	startPlanned bool
	startTimer   bool
	endNotes     string
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [title]",
		Short: "Start a focus session",
		RunE:  withDeps(runStartCmd),
	}
	cmd.Flags().BoolVar(&startPlanned, "planned", false, "session follows a planned block")
	cmd.Flags().BoolVar(&startTimer, "timer", false, "open the live timer after starting")
	return cmd
}

func runStartCmd(cmd *cobra.Command, args []string, rt *deps) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		title = rt.cfg.DefaultTitle
	}
	s, err := rt.svc.StartSession(cmd.Context(), rt.cfg.User, title, startPlanned)
	if err != nil {
		if errors.Is(err, store.ErrActiveSessionExists) {
			logErrln("A session is already running. End it with: focuspulse end")
		}
		return err
	}
	if err := printf(cmd, "Started %q at %s (%s)\n", s.Title, s.StartTime.Format("3:04 PM"), s.ID); err != nil {
		return err
	}
	if startTimer {
		return runTimer(cmd, rt, s)
	}
	return nil
}

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the active session",
		Args:  cobra.NoArgs,
		RunE: withDeps(func(cmd *cobra.Command, _ []string, rt *deps) error {
			s, err := rt.svc.PauseSession(cmd.Context(), rt.cfg.User, "")
			if err != nil {
				return err
			}
			return printf(cmd, "Paused %q (break %d)\n", s.Title, s.BreakCount)
		}),
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		Args:  cobra.NoArgs,
		RunE: withDeps(func(cmd *cobra.Command, _ []string, rt *deps) error {
			s, err := rt.svc.ResumeSession(cmd.Context(), rt.cfg.User, "")
			if err != nil {
				return err
			}
			return printf(cmd, "Resumed %q (breaks so far %s)\n", s.Title, stats.FormatFocusTime(s.TotalBreakTime))
		}),
	}
}

func newEndCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the active session",
		Args:  cobra.NoArgs,
		RunE:  withDeps(runEndCmd),
	}
	cmd.Flags().StringVar(&endNotes, "notes", "", "notes to store with the session")
	return cmd
}

func runEndCmd(cmd *cobra.Command, _ []string, rt *deps) error {
	summary, err := rt.svc.EndSession(cmd.Context(), rt.cfg.User, "", endNotes)
	if err != nil {
		return err
	}
	return printSummary(cmd, summary)
}

func printSummary(cmd *cobra.Command, summary model.EndSummary) error {
	lines := []string{
		fmt.Sprintf("Ended %q", summary.Title),
		fmt.Sprintf("Focus: %s", stats.FormatFocusTime(summary.Duration)),
		fmt.Sprintf("Breaks: %d (%s)", summary.BreakCount, stats.FormatFocusTime(summary.TotalBreakTime)),
	}
	if summary.Clamped {
		lines = append(lines, fmt.Sprintf("Note: break time exceeded elapsed time by %ds; focus recorded as 0", summary.ClampedSeconds))
	}
	return printLines(cmd, lines)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session",
		Args:  cobra.NoArgs,
		RunE: withDeps(func(cmd *cobra.Command, _ []string, rt *deps) error {
			s, ok, err := rt.svc.ActiveSession(cmd.Context(), rt.cfg.User)
			if err != nil {
				return err
			}
			if !ok {
				return printf(cmd, "No active session.\n")
			}
			now := rt.svc.Now()
			return printLines(cmd, []string{
				fmt.Sprintf("%s  %s", s.Title, session.StateOf(s)),
				fmt.Sprintf("Started: %s", s.StartTime.Format("Mon 3:04 PM")),
				fmt.Sprintf("Focus:   %s", stats.FormatClock(session.Elapsed(s, now))),
				fmt.Sprintf("Breaks:  %d (%s)", s.BreakCount, stats.FormatFocusTime(session.BreakSeconds(s, now))),
			})
		}),
	}
}

func newTimerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timer",
		Short: "Open the live timer for the active session",
		Args:  cobra.NoArgs,
		RunE: withDeps(func(cmd *cobra.Command, _ []string, rt *deps) error {
			s, ok, err := rt.svc.ActiveSession(cmd.Context(), rt.cfg.User)
			if err != nil {
				return err
			}
			if !ok {
				return app.ErrNoActiveSession
			}
			return runTimer(cmd, rt, s)
		}),
	}
}

func runTimer(cmd *cobra.Command, rt *deps, s model.Session) error {
	m := tui.NewModel(rt.svc, rt.cfg.User, s, rt.svc.Now)
	if err := tui.Run(m); err != nil {
		return fmt.Errorf("failed to run timer: %w", err)
	}
	if summary, ok := m.Summary(); ok {
		return printSummary(cmd, summary)
	}
	return printf(cmd, "Session %q is still running. Reopen with: focuspulse timer\n", s.Title)
}
