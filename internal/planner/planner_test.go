package planner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

func block(id string, day time.Weekday, start string, mins int) model.PlannedBlock {
	return model.PlannedBlock{ID: id, Title: "block " + id, DayOfWeek: day, StartTime: start, Duration: mins, IsActive: true}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30", 0, false},
		{"09:60", 0, false},
		{"0930", 0, false},
		{"ab:cd", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseClock(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseClock(%q) expected error", tc.in)
		}
	}
}

func TestEndTimeWrapsPastMidnight(t *testing.T) {
	cases := map[string]struct {
		start string
		mins  int
		want  string
	}{
		"simple":   {"09:00", 90, "10:30"},
		"midnight": {"23:00", 60, "00:00"},
		"wrap":     {"23:30", 120, "01:30"},
	}
	for name, tc := range cases {
		got, err := EndTime(tc.start, tc.mins)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: EndTime = %q, want %q", name, got, tc.want)
		}
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatMinutes(150); got != "2h 30m" {
		t.Fatalf("FormatMinutes(150) = %q", got)
	}
	if got := FormatMinutes(120); got != "2h" {
		t.Fatalf("FormatMinutes(120) = %q", got)
	}
	if got := FormatMinutes(45); got != "45m" {
		t.Fatalf("FormatMinutes(45) = %q", got)
	}
	if got := Format12("13:05"); got != "1:05 PM" {
		t.Fatalf("Format12 = %q", got)
	}
	if got := Format12("00:00"); got != "12:00 AM" {
		t.Fatalf("Format12 midnight = %q", got)
	}
}

func TestConflictBoundary(t *testing.T) {
	existing := []model.PlannedBlock{block("a", time.Monday, "10:00", 60)}

	adjacent, err := CheckConflicts(Candidate{DayOfWeek: time.Monday, StartTime: "09:00", Duration: 60}, existing, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(adjacent) != 0 {
		t.Fatalf("adjacent blocks must not conflict: %+v", adjacent)
	}

	overlap, err := CheckConflicts(Candidate{DayOfWeek: time.Monday, StartTime: "09:30", Duration: 60}, existing, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(overlap) != 1 || overlap[0].ID != "a" {
		t.Fatalf("expected conflict with a, got %+v", overlap)
	}

	after, err := CheckConflicts(Candidate{DayOfWeek: time.Monday, StartTime: "11:00", Duration: 30}, existing, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("block starting at end must not conflict: %+v", after)
	}
}

func TestConflictSymmetry(t *testing.T) {
	pairs := [][2]model.PlannedBlock{
		{block("a", time.Tuesday, "09:00", 60), block("b", time.Tuesday, "09:30", 60)},
		{block("a", time.Tuesday, "09:00", 240), block("b", time.Tuesday, "10:00", 15)},
		{block("a", time.Tuesday, "09:00", 60), block("b", time.Tuesday, "10:00", 60)},
		{block("a", time.Tuesday, "22:00", 180), block("b", time.Tuesday, "23:45", 15)},
	}
	for _, p := range pairs {
		ab, err := CheckConflicts(CandidateOf(p[0]), []model.PlannedBlock{p[1]}, "")
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		ba, err := CheckConflicts(CandidateOf(p[1]), []model.PlannedBlock{p[0]}, "")
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if (len(ab) == 0) != (len(ba) == 0) {
			t.Fatalf("asymmetric result for %+v / %+v", p[0], p[1])
		}
	}
}

func TestConflictFiltersDayActiveAndExclude(t *testing.T) {
	inactive := block("c", time.Monday, "09:00", 60)
	inactive.IsActive = false
	existing := []model.PlannedBlock{
		block("a", time.Monday, "09:00", 60),
		block("b", time.Tuesday, "09:00", 60),
		inactive,
		block("d", time.Monday, "09:45", 30),
	}
	cand := Candidate{DayOfWeek: time.Monday, StartTime: "09:15", Duration: 60}

	all, err := CheckConflicts(cand, existing, "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "d" {
		t.Fatalf("expected conflicts a and d in order, got %+v", all)
	}

	excluded, err := CheckConflicts(cand, existing, "a")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(excluded) != 1 || excluded[0].ID != "d" {
		t.Fatalf("expected only d after excluding a, got %+v", excluded)
	}
}

func TestCheckConflictsRejectsBadClock(t *testing.T) {
	if _, err := CheckConflicts(Candidate{DayOfWeek: time.Monday, StartTime: "25:00", Duration: 60}, nil, ""); err == nil {
		t.Fatalf("expected error for invalid candidate clock")
	}
}

func TestValidate(t *testing.T) {
	valid := BlockInput{Title: "  Deep work  ", DayOfWeek: 1, StartTime: "09:00", Duration: 90}
	got, err := Validate(valid)
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if got.Title != "Deep work" {
		t.Fatalf("expected trimmed title, got %q", got.Title)
	}

	cases := map[string]struct {
		mutate func(*BlockInput)
		msg    string
	}{
		"empty title":  {func(in *BlockInput) { in.Title = "   " }, "title is required"},
		"long title":   {func(in *BlockInput) { in.Title = strings.Repeat("x", 101) }, "at most 100"},
		"bad day":      {func(in *BlockInput) { in.DayOfWeek = 7 }, "day of week"},
		"bad clock":    {func(in *BlockInput) { in.StartTime = "24:00" }, "HH:MM"},
		"too short":    {func(in *BlockInput) { in.Duration = 14 }, "between 15 and 480"},
		"too long":     {func(in *BlockInput) { in.Duration = 481 }, "between 15 and 480"},
		"missing time": {func(in *BlockInput) { in.StartTime = "" }, "HH:MM"},
	}
	for name, tc := range cases {
		in := valid
		tc.mutate(&in)
		_, err := Validate(in)
		if !errors.Is(err, ErrInvalidBlock) {
			t.Fatalf("%s: expected ErrInvalidBlock, got %v", name, err)
		}
		if !strings.Contains(err.Error(), tc.msg) {
			t.Fatalf("%s: expected %q in %q", name, tc.msg, err.Error())
		}
	}
}

func TestPatchApply(t *testing.T) {
	b := block("a", time.Monday, "09:00", 60)
	title := "Renamed"
	day := time.Friday
	p := BlockPatch{Title: &title}
	if p.Touches() {
		t.Fatalf("title-only patch must not touch the schedule")
	}
	in := p.Apply(InputOf(b))
	if in.Title != "Renamed" || in.DayOfWeek != int(time.Monday) {
		t.Fatalf("unexpected input: %+v", in)
	}
	p.DayOfWeek = &day
	if !p.Touches() {
		t.Fatalf("day patch must touch the schedule")
	}
	if c := p.Apply(InputOf(b)).Candidate(); c.DayOfWeek != time.Friday || c.StartTime != "09:00" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"sun":       time.Sunday,
		"Monday":    time.Monday,
		" thu ":     time.Thursday,
		"6":         time.Saturday,
		"0":         time.Sunday,
		"WEDNESDAY": time.Wednesday,
	}
	for in, want := range cases {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Fatalf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"7", "-1", "someday"} {
		if _, err := ParseWeekday(in); err == nil {
			t.Fatalf("ParseWeekday(%q) expected error", in)
		}
	}
}

func TestSummarize(t *testing.T) {
	inactive := block("x", time.Monday, "12:00", 60)
	inactive.IsActive = false
	sum := Summarize([]model.PlannedBlock{
		block("a", time.Monday, "09:00", 90),
		block("b", time.Monday, "13:00", 60),
		inactive,
	})
	if sum.Events != 2 || sum.ScheduledMinutes != 150 || sum.FreeMinutes != 1290 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Scheduled != "2h 30m" || sum.Free != "21h 30m" {
		t.Fatalf("unexpected formatted summary: %+v", sum)
	}
}

func TestWeekView(t *testing.T) {
	// Wednesday.
	ref := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	week := WeekView([]model.PlannedBlock{
		block("late", time.Monday, "14:00", 60),
		block("early", time.Monday, "08:00", 60),
		block("sat", time.Saturday, "10:00", 30),
	}, ref)

	if week[0].Date.String() != "2024-03-03" || week[6].Date.String() != "2024-03-09" {
		t.Fatalf("unexpected week dates: %s..%s", week[0].Date, week[6].Date)
	}
	mon := week[time.Monday]
	if len(mon.Blocks) != 2 || mon.Blocks[0].ID != "early" {
		t.Fatalf("expected monday blocks sorted by start: %+v", mon.Blocks)
	}
	if week[time.Saturday].Summary.ScheduledMinutes != 30 {
		t.Fatalf("unexpected saturday summary: %+v", week[time.Saturday].Summary)
	}
	if len(week[time.Sunday].Blocks) != 0 {
		t.Fatalf("expected empty sunday")
	}
}
