package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "focuspulse.db"), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func completed(user, title string, start time.Time, mins int, planned bool) model.Session {
	end := start.Add(time.Duration(mins) * time.Minute)
	return model.Session{
		UserID:    user,
		Title:     title,
		StartTime: start,
		EndTime:   &end,
		Duration:  int64(mins * 60),
		Completed: true,
		IsPlanned: planned,
	}
}

func TestMigrationsApplied(t *testing.T) {
	st := openTestStore(t)
	version, err := st.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version < 1 {
		t.Fatalf("expected migrations to be applied, got version %d", version)
	}
}

func TestOneActiveSessionPerUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	first, err := st.CreateSession(ctx, model.Session{UserID: "u1", Title: "Write", StartTime: start})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}
	_, err = st.CreateSession(ctx, model.Session{UserID: "u1", Title: "Again", StartTime: start})
	if !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}
	if _, err := st.CreateSession(ctx, model.Session{UserID: "u2", Title: "Other", StartTime: start}); err != nil {
		t.Fatalf("other user should be allowed an open session: %v", err)
	}

	active, err := st.ActiveSession(ctx, "u1")
	if err != nil {
		t.Fatalf("active session: %v", err)
	}
	if active.ID != first.ID || !active.StartTime.Equal(start) {
		t.Fatalf("unexpected active session: %+v", active)
	}

	end := start.Add(30 * time.Minute)
	active.EndTime = &end
	active.Duration = 1800
	active.Completed = true
	active.UpdatedAt = end
	if err := st.SaveSession(ctx, active); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if _, err := st.ActiveSession(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no active session, got %v", err)
	}
	if _, err := st.CreateSession(ctx, model.Session{UserID: "u1", Title: "Next", StartTime: end}); err != nil {
		t.Fatalf("expected new session after completion: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	paused := start.Add(10 * time.Minute)

	sess, err := st.CreateSession(ctx, model.Session{UserID: "u1", Title: "Read", StartTime: start, IsPlanned: true})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	sess.IsPaused = true
	sess.PausedAt = &paused
	sess.BreakCount = 1
	sess.UpdatedAt = paused
	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := st.GetSession(ctx, "u1", sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !got.IsPaused || got.PausedAt == nil || !got.PausedAt.Equal(paused) {
		t.Fatalf("pause state not persisted: %+v", got)
	}
	if got.BreakCount != 1 || !got.IsPlanned || got.EndTime != nil {
		t.Fatalf("unexpected session fields: %+v", got)
	}
	if _, err := st.GetSession(ctx, "u2", sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other user lookup to fail, got %v", err)
	}
}

func TestSaveSessionMissing(t *testing.T) {
	st := openTestStore(t)
	err := st.SaveSession(context.Background(), model.Session{ID: "missing", UserID: "u1", UpdatedAt: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCompletedSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rows := []model.Session{
		completed("u1", "Deep work", base, 60, true),
		completed("u1", "Email triage", base.Add(2*time.Hour), 15, false),
		completed("u1", "deep reading", base.Add(24*time.Hour), 45, false),
		completed("u1", "100% focus_mode", base.Add(48*time.Hour), 30, false),
		completed("u2", "Deep work", base, 60, true),
	}
	for _, s := range rows {
		if _, err := st.CreateSession(ctx, s); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	all, err := st.ListCompletedSessions(ctx, "u1", model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(all))
	}
	if all[0].Title != "100% focus_mode" || all[3].Title != "Deep work" {
		t.Fatalf("expected newest first, got %q..%q", all[0].Title, all[3].Title)
	}

	deep, err := st.ListCompletedSessions(ctx, "u1", model.HistoryFilter{Query: "DEEP"})
	if err != nil {
		t.Fatalf("search sessions: %v", err)
	}
	if len(deep) != 2 {
		t.Fatalf("expected case-insensitive search to match 2, got %d", len(deep))
	}

	pct, err := st.ListCompletedSessions(ctx, "u1", model.HistoryFilter{Query: "%"})
	if err != nil {
		t.Fatalf("search percent: %v", err)
	}
	if len(pct) != 1 {
		t.Fatalf("expected literal %% match only, got %d", len(pct))
	}

	planned, err := st.ListCompletedSessions(ctx, "u1", model.HistoryFilter{Type: model.SessionTypePlanned})
	if err != nil {
		t.Fatalf("planned sessions: %v", err)
	}
	if len(planned) != 1 || !planned[0].IsPlanned {
		t.Fatalf("expected one planned session, got %+v", planned)
	}

	page, err := st.ListCompletedSessions(ctx, "u1", model.HistoryFilter{Type: model.SessionTypeAdhoc, Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("paged sessions: %v", err)
	}
	if len(page) != 2 || page[0].Title != "deep reading" {
		t.Fatalf("unexpected page: %+v", page)
	}

	n, err := st.CountCompletedSessions(ctx, "u1", model.HistoryFilter{Type: model.SessionTypeAdhoc, Limit: 1})
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 adhoc sessions, got %d", n)
	}
}

func TestListCompletedBetween(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	from := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	for _, start := range []time.Time{from.Add(-time.Second), from, to.Add(-time.Second), to} {
		if _, err := st.CreateSession(ctx, completed("u1", "x", start, 10, false)); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}
	got, err := st.ListCompletedBetween(ctx, "u1", from, to)
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected half-open window to keep 2 sessions, got %d", len(got))
	}
	if !got[0].StartTime.Equal(from) {
		t.Fatalf("expected oldest first, got %v", got[0].StartTime)
	}
}

func TestBlocksLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	mk := func(title string, day time.Weekday, start string) model.PlannedBlock {
		b, err := st.CreateBlock(ctx, model.PlannedBlock{
			UserID:    "u1",
			Title:     title,
			DayOfWeek: day,
			StartTime: start,
			Duration:  60,
			IsActive:  true,
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("create block: %v", err)
		}
		return b
	}
	late := mk("Late", time.Monday, "14:00")
	early := mk("Early", time.Monday, "09:00")
	mk("Sunday", time.Sunday, "10:00")

	all, err := st.ListActiveBlocks(ctx, "u1")
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(all) != 3 || all[0].Title != "Sunday" || all[1].Title != "Early" {
		t.Fatalf("unexpected order: %+v", all)
	}

	if err := st.SetBlockActive(ctx, "u1", late.ID, false, now); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	monday, err := st.ListActiveBlocksForDay(ctx, "u1", time.Monday)
	if err != nil {
		t.Fatalf("list day: %v", err)
	}
	if len(monday) != 1 || monday[0].ID != early.ID {
		t.Fatalf("expected only early block on monday, got %+v", monday)
	}
	inactive, err := st.GetBlock(ctx, "u1", late.ID)
	if err != nil {
		t.Fatalf("get inactive block: %v", err)
	}
	if inactive.IsActive {
		t.Fatalf("expected block to be inactive")
	}

	early.Title = "Earlier"
	early.StartTime = "08:30"
	early.UpdatedAt = now.Add(time.Hour)
	if err := st.UpdateBlock(ctx, early); err != nil {
		t.Fatalf("update block: %v", err)
	}
	got, err := st.GetBlock(ctx, "u1", early.ID)
	if err != nil {
		t.Fatalf("get block: %v", err)
	}
	if got.Title != "Earlier" || got.StartTime != "08:30" || got.DayOfWeek != time.Monday {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := st.SetBlockActive(ctx, "u2", early.ID, false, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestBlockDayCheckConstraint(t *testing.T) {
	st := openTestStore(t)
	_, err := st.CreateBlock(context.Background(), model.PlannedBlock{
		UserID:    "u1",
		Title:     "Bad",
		DayOfWeek: 7,
		StartTime: "09:00",
		Duration:  60,
		IsActive:  true,
	})
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.CreateBlock(ctx, model.PlannedBlock{
			UserID: "u1", Title: "Tx", DayOfWeek: time.Monday, StartTime: "09:00", Duration: 60, IsActive: true,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	blocks, err := st.ListActiveBlocks(ctx, "u1")
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("expected rollback, got %d blocks", len(blocks))
	}
}

func TestListAllForUser(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	if _, err := st.CreateSession(ctx, completed("u1", "Old", base, 30, false)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := st.CreateSession(ctx, model.Session{UserID: "u1", Title: "Open", StartTime: base.Add(48 * time.Hour)}); err != nil {
		t.Fatalf("create open session: %v", err)
	}
	if _, err := st.CreateSession(ctx, completed("u2", "Other", base, 30, false)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	sessions, err := st.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].Title != "Open" || sessions[1].Title != "Old" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}

	first, err := st.CreateBlock(ctx, model.PlannedBlock{UserID: "u1", Title: "First", DayOfWeek: time.Monday, StartTime: "09:00", Duration: 60, IsActive: true, CreatedAt: base})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	if _, err := st.CreateBlock(ctx, model.PlannedBlock{UserID: "u1", Title: "Second", DayOfWeek: time.Friday, StartTime: "09:00", Duration: 60, IsActive: true, CreatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("create block: %v", err)
	}
	if err := st.SetBlockActive(ctx, "u1", first.ID, false, base); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	blocks, err := st.ListBlocks(ctx, "u1")
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	if len(blocks) != 2 || blocks[0].Title != "Second" || blocks[1].IsActive {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}
