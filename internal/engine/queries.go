package engine

import (
	"context"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

func (s *Service) GetTask(ctx context.Context, userID, id string) (*hypeos.Task, error) {
	t, err := s.store.Tasks.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, taskNotFound(id)
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, userID string, f storage.TaskFilter) ([]hypeos.Task, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []hypeos.Task{}
	}
	return tasks, nil
}

// DeleteTask removes the task row. Points already awarded for it stay.
func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	ok, err := s.store.Tasks.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return taskNotFound(id)
	}
	s.log.LogUserAction(userID, "delete_task", map[string]interface{}{"task_id": id})
	return nil
}

func (s *Service) GetGoal(ctx context.Context, userID, id string) (*storage.Goal, error) {
	g, err := s.store.Goals.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, goalNotFound(id)
	}
	return g, nil
}

func (s *Service) ListGoals(ctx context.Context, userID string) ([]storage.Goal, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	goals, err := s.store.Goals.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []storage.Goal{}
	}
	return goals, nil
}

// DeleteGoal removes the goal and detaches its tasks.
func (s *Service) DeleteGoal(ctx context.Context, userID, id string) error {
	return s.store.InTx(ctx, func(r *storage.Repos) error {
		if err := r.Tasks.ClearGoal(ctx, userID, id); err != nil {
			return err
		}
		ok, err := r.Goals.Delete(ctx, userID, id)
		if err != nil {
			return err
		}
		if !ok {
			return goalNotFound(id)
		}
		return nil
	})
}

// RecentCompletions returns the completion log, newest first.
func (s *Service) RecentCompletions(ctx context.Context, userID string, limit int) ([]storage.Completion, error) {
	out, err := s.store.Completions.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []storage.Completion{}
	}
	return out, nil
}
