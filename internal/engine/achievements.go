package engine

import (
	"context"
	"fmt"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

// Achievement is a badge derived from the user's record.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Earned      bool   `json:"earned"`
}

// AchievementChecker calculates which achievements the user has earned.
type AchievementChecker struct {
	rules          *hypeos.Engine
	state          hypeos.UserState
	completedTasks int
	highImpact     int
}

func NewAchievementChecker(rules *hypeos.Engine, state hypeos.UserState, tasks []hypeos.Task) *AchievementChecker {
	c := &AchievementChecker{rules: rules, state: state}
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		c.completedTasks++
		if t.ImpactTier == hypeos.ImpactHigh {
			c.highImpact++
		}
	}
	return c
}

func (c *AchievementChecker) GetAchievements() []Achievement {
	achievements := []Achievement{
		c.taskCountAchievement("first_win", "First Win", "Complete 1 task", "✓", 1),
		c.taskCountAchievement("productive", "Productive", "Complete 10 tasks", "📋", 10),
		c.taskCountAchievement("achiever", "Achiever", "Complete 50 tasks", "🏅", 50),
		c.taskCountAchievement("powerhouse", "Powerhouse", "Complete 100 tasks", "🏆", 100),

		c.highImpactAchievement("big_mover", "Big Mover", "Complete 10 high-impact tasks", "🚀", 10),

		c.levelAchievement("getting_started", "Getting Started", "Reach level 3", "🌿", 3),
		c.levelAchievement("on_the_rise", "On the Rise", "Reach level 5", "🌳", 5),
		c.levelAchievement("hype_machine", "Hype Machine", "Reach level 8", "⭐", 8),
	}

	// One badge per streak milestone, judged on the longest streak ever held.
	for _, m := range c.rules.Rules().Milestones {
		achievements = append(achievements, Achievement{
			ID:          fmt.Sprintf("streak_%d", m.Days),
			Name:        m.Reward,
			Description: fmt.Sprintf("Reach a %d-day streak", m.Days),
			Icon:        "🔥",
			Earned:      c.state.Streak.LongestStreak >= m.Days,
		})
	}

	top := c.rules.GetLevelFromPoints(1 << 30).Level
	achievements = append(achievements, c.levelAchievement("max_level", "Legend", fmt.Sprintf("Reach level %d", top), "💫", top))

	return achievements
}

func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

func (c *AchievementChecker) CountTotal() int {
	return len(c.GetAchievements())
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	earned := c.rules.GetLevelFromPoints(c.state.HypePoints).Level >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) taskCountAchievement(id, name, desc, icon string, count int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.completedTasks >= count}
}

func (c *AchievementChecker) highImpactAchievement(id, name, desc, icon string, count int) Achievement {
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.highImpact >= count}
}

// Achievements evaluates every badge for userID.
func (s *Service) Achievements(ctx context.Context, userID string) ([]Achievement, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	done := true
	tasks, err := s.store.Tasks.List(ctx, userID, storage.TaskFilter{Completed: &done})
	if err != nil {
		return nil, err
	}
	return NewAchievementChecker(s.rules, st, tasks).GetAchievements(), nil
}
