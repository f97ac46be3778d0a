package app

import (
	"context"
	"time"

	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/planner"
	"github.com/verte-zerg/focuspulse/internal/store"
)

// ListBlocks returns active blocks ordered by day then start time.
func (s *Service) ListBlocks(ctx context.Context, userID string) ([]model.PlannedBlock, error) {
	return s.store.ListActiveBlocks(ctx, userID)
}

// ListBlocksForDay returns active blocks on day ordered by start time.
func (s *Service) ListBlocksForDay(ctx context.Context, userID string, day time.Weekday) ([]model.PlannedBlock, error) {
	return s.store.ListActiveBlocksForDay(ctx, userID, day)
}

// ListBlocksForToday returns the active blocks for today's weekday.
func (s *Service) ListBlocksForToday(ctx context.Context, userID string) ([]model.PlannedBlock, error) {
	return s.ListBlocksForDay(ctx, userID, s.Now().Weekday())
}

// PlannerWeek lays active blocks out on the dates of the current week.
func (s *Service) PlannerWeek(ctx context.Context, userID string) ([7]planner.WeekDay, error) {
	blocks, err := s.store.ListActiveBlocks(ctx, userID)
	if err != nil {
		return [7]planner.WeekDay{}, err
	}
	return planner.WeekView(blocks, s.Now()), nil
}

// CreateBlock validates in and inserts it unless it overlaps an active block.
func (s *Service) CreateBlock(ctx context.Context, userID string, in planner.BlockInput) (model.PlannedBlock, error) {
	in, err := planner.Validate(in)
	if err != nil {
		return model.PlannedBlock{}, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	var created model.PlannedBlock
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := checkSlot(ctx, tx, userID, in.Candidate(), ""); err != nil {
			return err
		}
		created, err = tx.CreateBlock(ctx, model.PlannedBlock{
			UserID:      userID,
			Title:       in.Title,
			DayOfWeek:   time.Weekday(in.DayOfWeek),
			StartTime:   in.StartTime,
			Duration:    in.Duration,
			IsRecurring: in.IsRecurring,
			IsActive:    true,
			CreatedAt:   s.Now(),
		})
		return err
	})
	if err != nil {
		return model.PlannedBlock{}, err
	}
	s.logger.Debug("block created", "block_id", created.ID, "day", created.DayOfWeek, "start", created.StartTime)
	return created, nil
}

// UpdateBlock applies patch to a block. The schedule is conflict-checked,
// ignoring the block itself, whenever the patch touches it.
func (s *Service) UpdateBlock(ctx context.Context, userID, id string, patch planner.BlockPatch) (model.PlannedBlock, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	var updated model.PlannedBlock
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		cur, err := tx.GetBlock(ctx, userID, id)
		if err != nil {
			return err
		}
		in, err := planner.Validate(patch.Apply(planner.InputOf(cur)))
		if err != nil {
			return err
		}
		if cur.IsActive && patch.Touches() {
			if err := checkSlot(ctx, tx, userID, in.Candidate(), id); err != nil {
				return err
			}
		}
		updated = cur
		updated.Title = in.Title
		updated.DayOfWeek = time.Weekday(in.DayOfWeek)
		updated.StartTime = in.StartTime
		updated.Duration = in.Duration
		updated.IsRecurring = in.IsRecurring
		updated.UpdatedAt = s.Now()
		return tx.UpdateBlock(ctx, updated)
	})
	if err != nil {
		return model.PlannedBlock{}, err
	}
	s.logger.Debug("block updated", "block_id", id)
	return updated, nil
}

// DeleteBlock deactivates a block. Rows are never removed.
func (s *Service) DeleteBlock(ctx context.Context, userID, id string) error {
	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.store.SetBlockActive(ctx, userID, id, false, s.Now()); err != nil {
		return err
	}
	s.logger.Debug("block deleted", "block_id", id)
	return nil
}

// ToggleBlock sets the active flag. Reactivation is conflict-checked.
func (s *Service) ToggleBlock(ctx context.Context, userID, id string, active bool) (model.PlannedBlock, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	var out model.PlannedBlock
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		cur, err := tx.GetBlock(ctx, userID, id)
		if err != nil {
			return err
		}
		if active && !cur.IsActive {
			if err := checkSlot(ctx, tx, userID, planner.CandidateOf(cur), id); err != nil {
				return err
			}
		}
		now := s.Now()
		if err := tx.SetBlockActive(ctx, userID, id, active, now); err != nil {
			return err
		}
		out = cur
		out.IsActive = active
		out.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.PlannedBlock{}, err
	}
	s.logger.Debug("block toggled", "block_id", id, "active", active)
	return out, nil
}

// DuplicateBlock copies a block onto day, or onto its own day when day is nil.
func (s *Service) DuplicateBlock(ctx context.Context, userID, id string, day *time.Weekday) (model.PlannedBlock, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	var created model.PlannedBlock
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		src, err := tx.GetBlock(ctx, userID, id)
		if err != nil {
			return err
		}
		target := src.DayOfWeek
		if day != nil {
			target = *day
		}
		in, err := planner.Validate(planner.BlockPatch{DayOfWeek: &target}.Apply(planner.InputOf(src)))
		if err != nil {
			return err
		}
		if err := checkSlot(ctx, tx, userID, in.Candidate(), ""); err != nil {
			return err
		}
		created, err = tx.CreateBlock(ctx, model.PlannedBlock{
			UserID:      userID,
			Title:       in.Title,
			DayOfWeek:   target,
			StartTime:   in.StartTime,
			Duration:    in.Duration,
			IsRecurring: in.IsRecurring,
			IsActive:    true,
			CreatedAt:   s.Now(),
		})
		return err
	})
	if err != nil {
		return model.PlannedBlock{}, err
	}
	s.logger.Debug("block duplicated", "source_id", id, "block_id", created.ID, "day", created.DayOfWeek)
	return created, nil
}

func checkSlot(ctx context.Context, tx *store.Store, userID string, c planner.Candidate, excludeID string) error {
	existing, err := tx.ListActiveBlocksForDay(ctx, userID, c.DayOfWeek)
	if err != nil {
		return err
	}
	conflicts, err := planner.CheckConflicts(c, existing, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return newConflictError(conflicts)
	}
	return nil
}
