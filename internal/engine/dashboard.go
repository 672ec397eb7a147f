package engine

import (
	"context"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

type Dashboard struct {
	UserID              string               `json:"userId"`
	HypePoints          int                  `json:"hypePoints"`
	Level               hypeos.LevelInfo     `json:"level"`
	Streak              hypeos.StreakState   `json:"streak"`
	StreakStatus        hypeos.StreakStatus  `json:"streakStatus"`
	Quests              []hypeos.Quest       `json:"quests"`
	QuestProgress       hypeos.QuestProgress `json:"questProgress"`
	QuestCompletionRate int                  `json:"questCompletionRate"`
	QuestRewardsEarned  int                  `json:"questRewardsEarned"`
	TodayPoints         int                  `json:"todayPoints"`
	PendingTasks        int                  `json:"pendingTasks"`
	CompletedToday      int                  `json:"completedToday"`
	BadgesEarned        int                  `json:"badgesEarned"`
	BadgesTotal         int                  `json:"badgesTotal"`
}

// Dashboard assembles the home screen for userID. Opening it on a new day
// resets the daily quests.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	day := hypeos.DateKey(now)

	todayPoints, err := s.store.Completions.PointsOnDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	pending := false
	open, err := s.store.Tasks.List(ctx, userID, storage.TaskFilter{Completed: &pending})
	if err != nil {
		return nil, err
	}
	doneToday, err := s.store.Completions.OnDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	completed := true
	done, err := s.store.Tasks.List(ctx, userID, storage.TaskFilter{Completed: &completed})
	if err != nil {
		return nil, err
	}
	badges := NewAchievementChecker(s.rules, st, done)

	return &Dashboard{
		UserID:              userID,
		HypePoints:          st.HypePoints,
		Level:               s.rules.GetLevelFromPoints(st.HypePoints),
		Streak:              st.Streak,
		StreakStatus:        s.rules.CalculateStreakStatus(st.Streak, now),
		Quests:              st.Quests.Quests,
		QuestProgress:       st.Quests.Progress,
		QuestCompletionRate: hypeos.GetQuestCompletionRate(st.Quests.Quests),
		QuestRewardsEarned:  hypeos.GetTotalQuestRewards(st.Quests.Quests),
		TodayPoints:         todayPoints,
		PendingTasks:        len(open),
		CompletedToday:      len(doneToday),
		BadgesEarned:        badges.CountEarned(),
		BadgesTotal:         badges.CountTotal(),
	}, nil
}

// Quests returns today's quest state for userID.
func (s *Service) Quests(ctx context.Context, userID string) (hypeos.QuestState, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return hypeos.QuestState{}, err
	}
	return st.Quests, nil
}

type StreakView struct {
	Streak hypeos.StreakState  `json:"streak"`
	Status hypeos.StreakStatus `json:"status"`
}

func (s *Service) Streak(ctx context.Context, userID string) (*StreakView, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StreakView{
		Streak: st.Streak,
		Status: s.rules.CalculateStreakStatus(st.Streak, s.Now()),
	}, nil
}
