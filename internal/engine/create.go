package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

type CreateTaskInput struct {
	Title      string
	ImpactTier string
	Category   string
	MiniWin    bool
	GoalID     string
}

func (s *Service) CreateTask(ctx context.Context, userID string, in CreateTaskInput) (*hypeos.Task, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	tier, err := hypeos.ParseImpactTier(in.ImpactTier)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, err
	}

	task := hypeos.Task{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		ImpactTier: tier,
		Category:   category,
		MiniWin:    in.MiniWin,
		CreatedAt:  s.Now(),
	}

	err = s.store.InTx(ctx, func(r *storage.Repos) error {
		if goalID := strings.TrimSpace(in.GoalID); goalID != "" {
			g, err := r.Goals.Get(ctx, userID, goalID)
			if err != nil {
				return err
			}
			if g == nil {
				return goalNotFound(goalID)
			}
			task.GoalID = &goalID
		}
		return r.Tasks.Insert(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.log.LogUserAction(userID, "create_task", map[string]interface{}{
		"task_id":     task.ID,
		"impact_tier": task.ImpactTier,
		"category":    task.Category,
	})
	return &task, nil
}

type CreateGoalInput struct {
	Title       string
	Description string
	Category    string
	TargetDate  *time.Time
}

func (s *Service) CreateGoal(ctx context.Context, userID string, in CreateGoalInput) (*storage.Goal, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	category := ""
	if strings.TrimSpace(in.Category) != "" {
		if category, err = normalizeCategory(in.Category); err != nil {
			return nil, err
		}
	}

	g := storage.Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		TargetDate:  in.TargetDate,
		CreatedAt:   s.Now(),
	}
	if err := s.store.Goals.Insert(ctx, g); err != nil {
		return nil, err
	}
	s.log.LogUserAction(userID, "create_goal", map[string]interface{}{"goal_id": g.ID})
	return &g, nil
}
