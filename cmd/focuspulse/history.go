package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/stats"
	"github.com/verte-zerg/focuspulse/internal/statsui"
)

var (
	historyQuery  string
	historyType   string
	historyLimit  int
	historyOffset int

	statsPlain bool

	weekOffset int
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show focus time for today",
		Args:  cobra.NoArgs,
		RunE: withDeps(func(cmd *cobra.Command, _ []string, rt *deps) error {
			today, err := rt.svc.TodayStats(cmd.Context(), rt.cfg.User)
			if err != nil {
				return err
			}
			week, err := rt.svc.Week(cmd.Context(), rt.cfg.User, 0)
			if err != nil {
				return err
			}
			return printLines(cmd, []string{
				fmt.Sprintf("Sessions today: %d", today.SessionsToday),
				fmt.Sprintf("Focus today:    %s", today.FocusTime),
				fmt.Sprintf("This week:      %.1fh of %s", stats.WeekTotalHours(week), today.Target),
			})
		}),
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&historyQuery, "search", "", "case-insensitive title search")
	cmd.Flags().StringVar(&historyType, "type", string(model.SessionTypeAll), "all, planned or adhoc")
	cmd.Flags().IntVar(&historyLimit, "limit", 0, "sessions per page (default 20)")
	cmd.Flags().IntVar(&historyOffset, "offset", 0, "sessions to skip")
}

func historyFilter() model.HistoryFilter {
	return model.HistoryFilter{
		Query:  historyQuery,
		Type:   model.SessionType(historyType),
		Limit:  historyLimit,
		Offset: historyOffset,
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed sessions",
		Args:  cobra.NoArgs,
		RunE:  withDeps(runHistoryCmd),
	}
	addFilterFlags(cmd)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string, rt *deps) error {
	page, err := rt.svc.SessionsHistory(cmd.Context(), rt.cfg.User, historyFilter())
	if err != nil {
		return err
	}
	if err := stats.RenderSessions(cmd.OutOrStdout(), page.Groups); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if page.Total == 0 {
		return nil
	}
	first := historyOffset + 1
	last := historyOffset + len(page.Sessions)
	line := fmt.Sprintf("Showing %d-%d of %d", first, last, page.Total)
	if page.HasMore {
		line += fmt.Sprintf("  (next: --offset %d)", last)
	}
	return printf(cmd, "%s\n", line)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  withDeps(runStatsCmd),
	}
	addFilterFlags(cmd)
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	cmd.Flags().IntVar(&weekOffset, "week", 0, "week offset (0 = this week, -1 = last week)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string, rt *deps) error {
	if weekOffset > 0 {
		return fmt.Errorf("--week must be <= 0")
	}
	if !statsPlain {
		m := statsui.NewModel(rt.svc, rt.cfg.User, historyFilter())
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	report, err := rt.svc.Report(cmd.Context(), rt.cfg.User, weekOffset, historyFilter())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.History); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if report.History.SessionCount == 0 {
		return nil
	}
	if err := stats.RenderInsights(out, report.Insights); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := printf(cmd, "Last %d days  %s\n\n", len(report.Daily), stats.Sparkline(report.Daily)); err != nil {
		return err
	}
	if err := stats.RenderWeek(out, report.Week, report.Today, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSessions(out, report.Groups); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newWeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show focus hours per day for a week",
		Args:  cobra.NoArgs,
		RunE:  withDeps(runWeekCmd),
	}
	cmd.Flags().IntVar(&weekOffset, "offset", 0, "week offset (0 = this week, -1 = last week)")
	return cmd
}

func runWeekCmd(cmd *cobra.Command, _ []string, rt *deps) error {
	if weekOffset > 0 {
		return fmt.Errorf("--offset must be <= 0")
	}
	buckets, err := rt.svc.Week(cmd.Context(), rt.cfg.User, weekOffset)
	if err != nil {
		return err
	}
	today := model.DateOf(rt.svc.Now())
	if err := stats.RenderWeek(cmd.OutOrStdout(), buckets, today, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
