package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/focuspulse/internal/model"
)

const sessionColumns = `id, user_id, title, start_time, end_time, duration, total_break_time,
	break_count, is_paused, paused_at, completed, is_planned, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSession inserts a new open session and returns it with its id.
// It fails with ErrActiveSessionExists when the user already has one.
func (s *Store) CreateSession(ctx context.Context, sess model.Session) (model.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = sess.StartTime
	}
	sess.UpdatedAt = sess.CreatedAt
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.Title,
		s.formatTime(sess.StartTime),
		s.nullTime(sess.EndTime),
		sess.Duration,
		sess.TotalBreakTime,
		sess.BreakCount,
		sess.IsPaused,
		s.nullTime(sess.PausedAt),
		sess.Completed,
		sess.IsPlanned,
		nullString(sess.Notes),
		s.formatTime(sess.CreatedAt),
		s.formatTime(sess.UpdatedAt),
	)
	if err != nil {
		err = classify(err)
		if isUniqueViolation(err) && !sess.Completed {
			return model.Session{}, ErrActiveSessionExists
		}
		return model.Session{}, fmt.Errorf("insert session: %w", err)
	}
	s.logger.Debug("session created", "session_id", sess.ID, "user_id", sess.UserID)
	return sess, nil
}

// GetSession loads a session owned by userID.
func (s *Store) GetSession(ctx context.Context, userID, id string) (model.Session, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND user_id = ?`, id, userID)
	sess, err := s.scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("get session: %w", classify(err))
	}
	return sess, nil
}

// ActiveSession returns the user's open session, or ErrNotFound.
func (s *Store) ActiveSession(ctx context.Context, userID string) (model.Session, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? AND completed = 0
		 ORDER BY start_time DESC LIMIT 1`, userID)
	sess, err := s.scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("active session: %w", classify(err))
	}
	return sess, nil
}

// SaveSession writes the mutable lifecycle fields of an existing session.
func (s *Store) SaveSession(ctx context.Context, sess model.Session) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE sessions SET
			end_time = ?, duration = ?, total_break_time = ?, break_count = ?,
			is_paused = ?, paused_at = ?, completed = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		s.nullTime(sess.EndTime),
		sess.Duration,
		sess.TotalBreakTime,
		sess.BreakCount,
		sess.IsPaused,
		s.nullTime(sess.PausedAt),
		sess.Completed,
		nullString(sess.Notes),
		s.formatTime(sess.UpdatedAt),
		sess.ID,
		sess.UserID,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", classify(err))
	}
	return checkAffected(res)
}

// ListCompletedSessions returns completed sessions newest first.
// A non-positive Limit returns every match.
func (s *Store) ListCompletedSessions(ctx context.Context, userID string, filter model.HistoryFilter) ([]model.Session, error) {
	where, args := historyWhere(userID, filter)
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE %s ORDER BY start_time DESC`, sessionColumns, where)
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}
	return s.querySessions(ctx, query, args...)
}

// CountCompletedSessions counts sessions matching filter, ignoring Limit and Offset.
func (s *Store) CountCompletedSessions(ctx context.Context, userID string, filter model.HistoryFilter) (int, error) {
	where, args := historyWhere(userID, filter)
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", classify(err))
	}
	return n, nil
}

// ListCompletedBetween returns completed sessions with from <= start_time < to, oldest first.
func (s *Store) ListCompletedBetween(ctx context.Context, userID string, from, to time.Time) ([]model.Session, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? AND completed = 1 AND start_time >= ? AND start_time < ?
		 ORDER BY start_time ASC`,
		userID, s.formatTime(from), s.formatTime(to))
}

// ListSessions returns every session of the user, open or completed, newest first.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]model.Session, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ?
		 ORDER BY start_time DESC`, userID)
}

func historyWhere(userID string, filter model.HistoryFilter) (string, []any) {
	clauses := []string{"user_id = ?", "completed = 1"}
	args := []any{userID}
	switch filter.Type {
	case model.SessionTypePlanned:
		clauses = append(clauses, "is_planned = 1")
	case model.SessionTypeAdhoc:
		clauses = append(clauses, "is_planned = 0")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		clauses = append(clauses, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%")
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Store) querySessions(ctx context.Context, query string, args ...any) ([]model.Session, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", classify(err))
	}
	defer closeRows(rows)

	var sessions []model.Session
	for rows.Next() {
		sess, err := s.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) scanSession(row rowScanner) (model.Session, error) {
	var (
		sess                 model.Session
		startTime            string
		endTime, pausedAt    sql.NullString
		notes                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.Title,
		&startTime,
		&endTime,
		&sess.Duration,
		&sess.TotalBreakTime,
		&sess.BreakCount,
		&sess.IsPaused,
		&pausedAt,
		&sess.Completed,
		&sess.IsPlanned,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Session{}, err
	}
	var err error
	if sess.StartTime, err = s.parseTime(startTime); err != nil {
		return model.Session{}, err
	}
	if sess.EndTime, err = s.parseNullTime(endTime); err != nil {
		return model.Session{}, err
	}
	if sess.PausedAt, err = s.parseNullTime(pausedAt); err != nil {
		return model.Session{}, err
	}
	if sess.CreatedAt, err = s.parseTime(createdAt); err != nil {
		return model.Session{}, err
	}
	if sess.UpdatedAt, err = s.parseTime(updatedAt); err != nil {
		return model.Session{}, err
	}
	sess.Notes = notes.String
	return sess, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
