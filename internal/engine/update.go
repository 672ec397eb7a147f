package engine

import (
	"context"
	"strings"
	"time"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

// UpdateTaskInput changes the non-nil fields. An empty GoalID detaches the task.
type UpdateTaskInput struct {
	Title      *string
	ImpactTier *string
	Category   *string
	MiniWin    *bool
	GoalID     *string
}

// UpdateTask edits a pending task. Completed tasks are frozen since their
// points are already on the books.
func (s *Service) UpdateTask(ctx context.Context, userID, id string, in UpdateTaskInput) (*hypeos.Task, error) {
	var out hypeos.Task
	err := s.store.InTx(ctx, func(r *storage.Repos) error {
		t, err := r.Tasks.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return taskNotFound(id)
		}
		if t.Completed {
			return ErrTaskCompleted
		}

		if in.Title != nil {
			if t.Title, err = normalizeTitle(*in.Title); err != nil {
				return err
			}
		}
		if in.ImpactTier != nil {
			if t.ImpactTier, err = hypeos.ParseImpactTier(*in.ImpactTier); err != nil {
				return err
			}
		}
		if in.Category != nil {
			if t.Category, err = normalizeCategory(*in.Category); err != nil {
				return err
			}
		}
		if in.MiniWin != nil {
			t.MiniWin = *in.MiniWin
		}
		if in.GoalID != nil {
			goalID := strings.TrimSpace(*in.GoalID)
			if goalID == "" {
				t.GoalID = nil
			} else {
				g, err := r.Goals.Get(ctx, userID, goalID)
				if err != nil {
					return err
				}
				if g == nil {
					return goalNotFound(goalID)
				}
				t.GoalID = &goalID
			}
		}

		if err := r.Tasks.Update(ctx, *t); err != nil {
			return err
		}
		out = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type UpdateGoalInput struct {
	Title       *string
	Description *string
	Category    *string
	TargetDate  *time.Time
	ClearTarget bool
	Completed   *bool
}

func (s *Service) UpdateGoal(ctx context.Context, userID, id string, in UpdateGoalInput) (*storage.Goal, error) {
	var out storage.Goal
	err := s.store.InTx(ctx, func(r *storage.Repos) error {
		g, err := r.Goals.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		if g == nil {
			return goalNotFound(id)
		}
		if in.Title != nil {
			if g.Title, err = normalizeTitle(*in.Title); err != nil {
				return err
			}
		}
		if in.Description != nil {
			g.Description = strings.TrimSpace(*in.Description)
		}
		if in.Category != nil {
			if g.Category, err = normalizeCategory(*in.Category); err != nil {
				return err
			}
		}
		switch {
		case in.ClearTarget:
			g.TargetDate = nil
		case in.TargetDate != nil:
			g.TargetDate = in.TargetDate
		}
		if in.Completed != nil {
			g.Completed = *in.Completed
		}
		if err := r.Goals.Update(ctx, *g); err != nil {
			return err
		}
		out = *g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
