package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/focuspulse/internal/model"
)

const blockColumns = `id, user_id, title, day_of_week, start_time, duration,
	is_recurring, is_active, created_at, updated_at`

// CreateBlock inserts a planned block and returns it with its id.
func (s *Store) CreateBlock(ctx context.Context, b model.PlannedBlock) (model.PlannedBlock, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.UpdatedAt = b.CreatedAt
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO planned_blocks (`+blockColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.UserID,
		b.Title,
		int(b.DayOfWeek),
		b.StartTime,
		b.Duration,
		b.IsRecurring,
		b.IsActive,
		s.formatTime(b.CreatedAt),
		s.formatTime(b.UpdatedAt),
	)
	if err != nil {
		return model.PlannedBlock{}, fmt.Errorf("insert block: %w", classify(err))
	}
	return b, nil
}

// GetBlock loads a block owned by userID, active or not.
func (s *Store) GetBlock(ctx context.Context, userID, id string) (model.PlannedBlock, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+blockColumns+` FROM planned_blocks WHERE id = ? AND user_id = ?`, id, userID)
	b, err := s.scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlannedBlock{}, ErrNotFound
	}
	if err != nil {
		return model.PlannedBlock{}, fmt.Errorf("get block: %w", classify(err))
	}
	return b, nil
}

// UpdateBlock overwrites the editable fields of a block.
func (s *Store) UpdateBlock(ctx context.Context, b model.PlannedBlock) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE planned_blocks SET
			title = ?, day_of_week = ?, start_time = ?, duration = ?,
			is_recurring = ?, is_active = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		b.Title,
		int(b.DayOfWeek),
		b.StartTime,
		b.Duration,
		b.IsRecurring,
		b.IsActive,
		s.formatTime(b.UpdatedAt),
		b.ID,
		b.UserID,
	)
	if err != nil {
		return fmt.Errorf("update block: %w", classify(err))
	}
	return checkAffected(res)
}

// SetBlockActive flips the active flag. Deleting a block is SetBlockActive(false).
func (s *Store) SetBlockActive(ctx context.Context, userID, id string, active bool, at time.Time) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE planned_blocks SET is_active = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		active, s.formatTime(at), id, userID)
	if err != nil {
		return fmt.Errorf("set block active: %w", classify(err))
	}
	return checkAffected(res)
}

// ListActiveBlocks returns all active blocks ordered by day then start time.
func (s *Store) ListActiveBlocks(ctx context.Context, userID string) ([]model.PlannedBlock, error) {
	return s.queryBlocks(ctx,
		`SELECT `+blockColumns+` FROM planned_blocks
		 WHERE user_id = ? AND is_active = 1
		 ORDER BY day_of_week ASC, start_time ASC`, userID)
}

// ListActiveBlocksForDay returns active blocks on day ordered by start time.
func (s *Store) ListActiveBlocksForDay(ctx context.Context, userID string, day time.Weekday) ([]model.PlannedBlock, error) {
	return s.queryBlocks(ctx,
		`SELECT `+blockColumns+` FROM planned_blocks
		 WHERE user_id = ? AND is_active = 1 AND day_of_week = ?
		 ORDER BY start_time ASC`, userID, int(day))
}

// ListBlocks returns every block of the user, active or not, newest first.
func (s *Store) ListBlocks(ctx context.Context, userID string) ([]model.PlannedBlock, error) {
	return s.queryBlocks(ctx,
		`SELECT `+blockColumns+` FROM planned_blocks
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id ASC`, userID)
}

func (s *Store) queryBlocks(ctx context.Context, query string, args ...any) ([]model.PlannedBlock, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", classify(err))
	}
	defer closeRows(rows)

	var blocks []model.PlannedBlock
	for rows.Next() {
		b, err := s.scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (s *Store) scanBlock(row rowScanner) (model.PlannedBlock, error) {
	var (
		b                    model.PlannedBlock
		day                  int
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&day,
		&b.StartTime,
		&b.Duration,
		&b.IsRecurring,
		&b.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.PlannedBlock{}, err
	}
	b.DayOfWeek = time.Weekday(day)
	var err error
	if b.CreatedAt, err = s.parseTime(createdAt); err != nil {
		return model.PlannedBlock{}, err
	}
	if b.UpdatedAt, err = s.parseTime(updatedAt); err != nil {
		return model.PlannedBlock{}, err
	}
	return b, nil
}
