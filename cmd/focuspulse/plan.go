package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/focuspulse/internal/app"
	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/planner"
	"github.com/verte-zerg/focuspulse/internal/stats"
)

var (
	planDay      string
	planStart    string
	planDuration int
	planOnce     bool
	planTitle    string
	planToday    bool
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage weekly planned blocks",
	}
	cmd.AddCommand(newPlanListCmd())
	cmd.AddCommand(newPlanAddCmd())
	cmd.AddCommand(newPlanEditCmd())
	cmd.AddCommand(newPlanRemoveCmd())
	cmd.AddCommand(newPlanToggleCmd())
	cmd.AddCommand(newPlanDupCmd())
	cmd.AddCommand(newPlanWeekCmd())
	return cmd
}

func newPlanListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active blocks",
		Args:  cobra.NoArgs,
		RunE:  withDeps(runPlanListCmd),
	}
	cmd.Flags().StringVar(&planDay, "day", "", "only this day (name or 0-6)")
	cmd.Flags().BoolVar(&planToday, "today", false, "only today's blocks")
	return cmd
}

func runPlanListCmd(cmd *cobra.Command, _ []string, rt *deps) error {
	ctx := cmd.Context()
	var (
		blocks []model.PlannedBlock
		err    error
	)
	switch {
	case planToday:
		blocks, err = rt.svc.ListBlocksForToday(ctx, rt.cfg.User)
	case planDay != "":
		day, perr := planner.ParseWeekday(planDay)
		if perr != nil {
			return perr
		}
		blocks, err = rt.svc.ListBlocksForDay(ctx, rt.cfg.User, day)
	default:
		blocks, err = rt.svc.ListBlocks(ctx, rt.cfg.User)
	}
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return printf(cmd, "No planned blocks.\n")
	}
	return printLines(cmd, blockTable(blocks))
}

func blockTable(blocks []model.PlannedBlock) []string {
	headers := []string{"Day", "Start", "End", "Length", "Repeat", "Title", "ID"}
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, blockRow(b))
	}
	return stats.FormatTable(headers, rows, map[int]bool{3: true})
}

func blockRow(b model.PlannedBlock) []string {
	end, err := planner.EndTime(b.StartTime, b.Duration)
	if err != nil {
		end = "?"
	}
	repeat := "weekly"
	if !b.IsRecurring {
		repeat = "once"
	}
	return []string{
		b.DayOfWeek.String()[:3],
		planner.Format12(b.StartTime),
		planner.Format12(end),
		planner.FormatMinutes(b.Duration),
		repeat,
		b.Title,
		b.ID,
	}
}

func newPlanAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a planned block",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withDeps(runPlanAddCmd),
	}
	cmd.Flags().StringVar(&planDay, "day", "", "day of week (name or 0-6, default today)")
	cmd.Flags().StringVar(&planStart, "start", "", "start time HH:MM")
	cmd.Flags().IntVar(&planDuration, "duration", 0, "length in minutes (default from config)")
	cmd.Flags().BoolVar(&planOnce, "once", false, "do not repeat weekly")
	return cmd
}

func runPlanAddCmd(cmd *cobra.Command, args []string, rt *deps) error {
	day := rt.svc.Now().Weekday()
	if planDay != "" {
		parsed, err := planner.ParseWeekday(planDay)
		if err != nil {
			return err
		}
		day = parsed
	}
	duration := rt.cfg.DefaultBlockMins
	if cmd.Flags().Changed("duration") {
		duration = planDuration
	}
	in := planner.BlockInput{
		Title:       strings.Join(args, " "),
		DayOfWeek:   int(day),
		StartTime:   planStart,
		Duration:    duration,
		IsRecurring: !planOnce,
	}
	b, err := rt.svc.CreateBlock(cmd.Context(), rt.cfg.User, in)
	if err != nil {
		return conflictHint(err)
	}
	return printf(cmd, "Added %q on %s at %s (%s)\n", b.Title, b.DayOfWeek, planner.Format12(b.StartTime), b.ID)
}

func newPlanEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a planned block",
		Args:  cobra.ExactArgs(1),
		RunE:  withDeps(runPlanEditCmd),
	}
	cmd.Flags().StringVar(&planTitle, "title", "", "new title")
	cmd.Flags().StringVar(&planDay, "day", "", "new day (name or 0-6)")
	cmd.Flags().StringVar(&planStart, "start", "", "new start time HH:MM")
	cmd.Flags().IntVar(&planDuration, "duration", 0, "new length in minutes")
	cmd.Flags().BoolVar(&planOnce, "once", false, "set to false to repeat weekly")
	return cmd
}

func runPlanEditCmd(cmd *cobra.Command, args []string, rt *deps) error {
	var patch planner.BlockPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &planTitle
	}
	if flags.Changed("day") {
		day, err := planner.ParseWeekday(planDay)
		if err != nil {
			return err
		}
		patch.DayOfWeek = &day
	}
	if flags.Changed("start") {
		patch.StartTime = &planStart
	}
	if flags.Changed("duration") {
		patch.Duration = &planDuration
	}
	if flags.Changed("once") {
		recurring := !planOnce
		patch.IsRecurring = &recurring
	}
	b, err := rt.svc.UpdateBlock(cmd.Context(), rt.cfg.User, args[0], patch)
	if err != nil {
		return conflictHint(err)
	}
	return printLines(cmd, blockTable([]model.PlannedBlock{b}))
}

func newPlanRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a planned block",
		Args:    cobra.ExactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, rt *deps) error {
			if err := rt.svc.DeleteBlock(cmd.Context(), rt.cfg.User, args[0]); err != nil {
				return err
			}
			return printf(cmd, "Removed %s\n", args[0])
		}),
	}
}

func newPlanToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "toggle <id> <on|off>",
		Short:     "Enable or disable a planned block",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: withDeps(func(cmd *cobra.Command, args []string, rt *deps) error {
			var active bool
			switch strings.ToLower(args[1]) {
			case "on":
				active = true
			case "off":
				active = false
			default:
				return fmt.Errorf("state must be on or off, got %q", args[1])
			}
			b, err := rt.svc.ToggleBlock(cmd.Context(), rt.cfg.User, args[0], active)
			if err != nil {
				return conflictHint(err)
			}
			state := "disabled"
			if b.IsActive {
				state = "enabled"
			}
			return printf(cmd, "%s %q\n", state, b.Title)
		}),
	}
}

func newPlanDupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dup <id>",
		Short: "Copy a planned block to another day",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(cmd *cobra.Command, args []string, rt *deps) error {
			var day *time.Weekday
			if planDay != "" {
				parsed, err := planner.ParseWeekday(planDay)
				if err != nil {
					return err
				}
				day = &parsed
			}
			b, err := rt.svc.DuplicateBlock(cmd.Context(), rt.cfg.User, args[0], day)
			if err != nil {
				return conflictHint(err)
			}
			return printf(cmd, "Copied %q to %s (%s)\n", b.Title, b.DayOfWeek, b.ID)
		}),
	}
	cmd.Flags().StringVar(&planDay, "day", "", "target day (name or 0-6, default same day)")
	return cmd
}

func newPlanWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show this week's planned blocks by date",
		Args:  cobra.NoArgs,
		RunE: withDeps(func(cmd *cobra.Command, _ []string, rt *deps) error {
			week, err := rt.svc.PlannerWeek(cmd.Context(), rt.cfg.User)
			if err != nil {
				return err
			}
			return printLines(cmd, weekLines(week))
		}),
	}
}

func weekLines(week [7]planner.WeekDay) []string {
	var lines []string
	for _, d := range week {
		lines = append(lines, fmt.Sprintf("%s %s  %d events, %s scheduled, %s free",
			d.Weekday.String()[:3], d.Date, d.Summary.Events, d.Summary.Scheduled, d.Summary.Free))
		for _, b := range d.Blocks {
			end, err := planner.EndTime(b.StartTime, b.Duration)
			if err != nil {
				end = "?"
			}
			lines = append(lines, fmt.Sprintf("  %s-%s  %s", planner.Format12(b.StartTime), planner.Format12(end), b.Title))
		}
	}
	return lines
}

// conflictHint prints the conflicting blocks before returning err.
func conflictHint(err error) error {
	var cerr *app.ConflictError
	if errors.As(err, &cerr) {
		for _, line := range blockTable(cerr.Conflicts) {
			logErrln(line)
		}
	}
	return err
}
