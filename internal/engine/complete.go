package engine

import (
	"context"

	"github.com/google/uuid"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

type CompleteResult struct {
	Task         hypeos.Task              `json:"task"`
	Points       hypeos.PointsCalculation `json:"points"`
	StreakBefore hypeos.StreakState       `json:"streakBefore"`
	StreakAfter  hypeos.StreakState       `json:"streakAfter"`
	StreakReset  bool                     `json:"streakReset"`
	Milestone    *hypeos.Milestone        `json:"milestone,omitempty"`
	LevelBefore  hypeos.LevelInfo         `json:"levelBefore"`
	LevelAfter   hypeos.LevelInfo         `json:"levelAfter"`
	LevelUp      bool                     `json:"levelUp"`
	QuestRewards []hypeos.QuestReward     `json:"questRewards"`
	QuestPoints  int                      `json:"questPoints"`
	HypePoints   int                      `json:"hypePoints"`
}

// CompleteTask marks a task done and applies everything that follows from it:
// streak, task points, quest progress and rewards. All writes share one
// transaction, so a rejected completion (clock skew, bad tier) leaves the
// stored state untouched.
func (s *Service) CompleteTask(ctx context.Context, userID, taskID string) (*CompleteResult, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	now := s.Now()
	day := hypeos.DateKey(now)

	var res *CompleteResult
	err := s.store.InTx(ctx, func(r *storage.Repos) error {
		task, err := r.Tasks.Get(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return taskNotFound(taskID)
		}
		if task.Completed {
			return ErrTaskCompleted
		}

		st, _, err := s.loadState(ctx, r, userID, now)
		if err != nil {
			return err
		}

		streak, err := s.rules.UpdateStreak(st.Streak, now)
		if err != nil {
			return err
		}
		calc, err := s.rules.CalculateTaskPoints(*task, streak, task.MiniWin)
		if err != nil {
			return err
		}

		if err := r.Tasks.MarkDone(ctx, userID, taskID, now, day, calc.TotalPoints); err != nil {
			return err
		}
		completionID := uuid.NewString()
		if err := r.Completions.Insert(ctx, storage.Completion{
			ID:          completionID,
			UserID:      userID,
			TaskID:      taskID,
			CompletedAt: now,
			Day:         day,
			ImpactTier:  task.ImpactTier,
			Points:      calc.TotalPoints,
			BonusPoints: calc.BonusPoints,
		}); err != nil {
			return err
		}

		earned, err := r.Completions.PointsOnDay(ctx, userID, day)
		if err != nil {
			return err
		}
		logged, err := r.Completions.OnDay(ctx, userID, day)
		if err != nil {
			return err
		}
		progress := hypeos.BuildQuestProgress(storage.AsTasks(logged), earned, streak.CurrentStreak, now)

		oldQuests := st.Quests.Quests
		newQuests, err := s.rules.UpdateQuestProgress(oldQuests, progress)
		if err != nil {
			return err
		}
		newQuests = holdDayProgress(oldQuests, newQuests)
		rewards := s.rules.CheckQuestCompletions(oldQuests, newQuests)
		questPoints := 0
		for _, rw := range rewards {
			questPoints += rw.Points
		}
		if questPoints > 0 {
			if err := r.Completions.SetQuestPoints(ctx, completionID, questPoints); err != nil {
				return err
			}
		}

		levelBefore := s.rules.GetLevelFromPoints(st.HypePoints)
		streakBefore := st.Streak

		st.HypePoints += calc.TotalPoints + questPoints
		st.Streak = streak
		st.Quests = hypeos.QuestState{Progress: progress, Quests: newQuests}
		if err := r.Users.Save(ctx, st); err != nil {
			return err
		}

		levelAfter := s.rules.GetLevelFromPoints(st.HypePoints)
		done := *task
		done.Completed = true
		done.CompletedAt = &now
		done.PointsAwarded = calc.TotalPoints
		if rewards == nil {
			rewards = []hypeos.QuestReward{}
		}

		res = &CompleteResult{
			Task:         done,
			Points:       calc,
			StreakBefore: streakBefore,
			StreakAfter:  streak,
			StreakReset:  streakBefore.CurrentStreak > 1 && streak.CurrentStreak == 1,
			Milestone:    s.milestoneReached(streakBefore, streak),
			LevelBefore:  levelBefore,
			LevelAfter:   levelAfter,
			LevelUp:      levelAfter.Level > levelBefore.Level,
			QuestRewards: rewards,
			QuestPoints:  questPoints,
			HypePoints:   st.HypePoints,
		}
		return nil
	})
	if err != nil {
		s.log.WithUserID(userID).Debugw("complete task rejected", "task_id", taskID, "error", err)
		return nil, err
	}

	s.log.LogUserAction(userID, "complete_task", map[string]interface{}{
		"task_id":      taskID,
		"points":       res.Points.TotalPoints,
		"bonus":        res.Points.BonusPoints,
		"quest_points": res.QuestPoints,
		"streak":       res.StreakAfter.CurrentStreak,
		"level":        res.LevelAfter.Level,
	})
	for _, rw := range res.QuestRewards {
		s.log.LogQuestReward(userID, rw.QuestID, rw.Points)
	}
	if res.LevelUp {
		s.log.LogLevelUp(userID, res.LevelBefore.Level, res.LevelAfter.Level, res.HypePoints)
	}
	return res, nil
}

// milestoneReached returns the milestone whose day count the streak just hit.
func (s *Service) milestoneReached(before, after hypeos.StreakState) *hypeos.Milestone {
	if after.CurrentStreak == before.CurrentStreak {
		return nil
	}
	for _, m := range s.rules.Rules().Milestones {
		if m.Days == after.CurrentStreak {
			return &m
		}
	}
	return nil
}

// holdDayProgress keeps quest progress monotonic within a day: Current never
// drops and a completed quest stays completed until the daily reset.
func holdDayProgress(old, next []hypeos.Quest) []hypeos.Quest {
	prev := make(map[string]hypeos.Quest, len(old))
	for _, q := range old {
		prev[q.ID] = q
	}
	for i := range next {
		p, ok := prev[next[i].ID]
		if !ok {
			continue
		}
		next[i].Current = max(next[i].Current, p.Current)
		next[i].Completed = next[i].Completed || p.Completed
	}
	return next
}
