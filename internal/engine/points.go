package engine

import (
	"context"
	"time"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

// DailyPoints scores the tasks completed on day against the user's current streak.
func (s *Service) DailyPoints(ctx context.Context, userID string, day time.Time) (int, error) {
	tasks, streak, err := s.completedOn(ctx, userID, day)
	if err != nil {
		return 0, err
	}
	return s.rules.CalculateDailyPoints(tasks, streak)
}

// WeeklyPoints covers the seven days ending on end, oldest first.
func (s *Service) WeeklyPoints(ctx context.Context, userID string, end time.Time) (hypeos.WeeklyPoints, error) {
	st, err := s.store.Users.Load(ctx, userID)
	if err != nil {
		return hypeos.WeeklyPoints{}, err
	}
	var streak hypeos.StreakState
	if st != nil {
		streak = st.Streak
	}

	end = end.In(s.loc)
	groups := make([][]hypeos.Task, 0, 7)
	for i := 6; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		tasks, err := s.store.Tasks.List(ctx, userID, storage.TaskFilter{Day: hypeos.DateKey(day)})
		if err != nil {
			return hypeos.WeeklyPoints{}, err
		}
		groups = append(groups, tasks)
	}
	return s.rules.CalculateWeeklyPoints(groups, streak)
}

func (s *Service) Breakdown(ctx context.Context, userID string, day time.Time) (hypeos.PointsBreakdown, error) {
	tasks, streak, err := s.completedOn(ctx, userID, day)
	if err != nil {
		return hypeos.PointsBreakdown{}, err
	}
	return s.rules.GetPointsBreakdown(tasks, streak)
}

func (s *Service) completedOn(ctx context.Context, userID string, day time.Time) ([]hypeos.Task, hypeos.StreakState, error) {
	if err := validateUserID(userID); err != nil {
		return nil, hypeos.StreakState{}, err
	}
	st, err := s.store.Users.Load(ctx, userID)
	if err != nil {
		return nil, hypeos.StreakState{}, err
	}
	var streak hypeos.StreakState
	if st != nil {
		streak = st.Streak
	}
	tasks, err := s.store.Tasks.List(ctx, userID, storage.TaskFilter{Day: hypeos.DateKey(day.In(s.loc))})
	if err != nil {
		return nil, hypeos.StreakState{}, err
	}
	return tasks, streak, nil
}

type PreviewInput struct {
	ImpactTier string
	Category   string
	MiniWin    bool
}

// PreviewPoints reports what completing such a task now would award,
// including the streak step today's first completion would take. Nothing is
// written. A clock behind the last activity yields ErrClockSkew, as
// CompleteTask would.
func (s *Service) PreviewPoints(ctx context.Context, userID string, in PreviewInput) (hypeos.PointsCalculation, error) {
	if err := validateUserID(userID); err != nil {
		return hypeos.PointsCalculation{}, err
	}
	tier, err := hypeos.ParseImpactTier(in.ImpactTier)
	if err != nil {
		return hypeos.PointsCalculation{}, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return hypeos.PointsCalculation{}, err
	}

	st, err := s.store.Users.Load(ctx, userID)
	if err != nil {
		return hypeos.PointsCalculation{}, err
	}
	var streak hypeos.StreakState
	if st != nil {
		streak = st.Streak
	}
	streak, err = s.rules.UpdateStreak(streak, s.Now())
	if err != nil {
		return hypeos.PointsCalculation{}, err
	}

	return s.rules.CalculateTaskPoints(hypeos.Task{ImpactTier: tier, Category: category}, streak, in.MiniWin)
}
