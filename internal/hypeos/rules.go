package hypeos

import (
	"fmt"
	"sort"
	"strings"
)

// Milestone is a streak length that unlocks a higher point multiplier.
type Milestone struct {
	Days       int     `yaml:"days" json:"days"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Reward     string  `yaml:"reward" json:"reward"`
}

// QuestDef is the static part of a daily quest.
type QuestDef struct {
	ID     string    `yaml:"id" json:"id"`
	Title  string    `yaml:"title" json:"title"`
	Icon   string    `yaml:"icon" json:"icon"`
	Type   QuestType `yaml:"type" json:"type"`
	Target int       `yaml:"target" json:"target"`
	Reward int       `yaml:"reward" json:"reward"`
}

// Rules is the single table set shared by points, streak and quest logic.
type Rules struct {
	BasePoints          map[ImpactTier]int `yaml:"base_points" json:"basePoints"`
	MiniWinRate         float64            `yaml:"mini_win_rate" json:"miniWinRate"`
	CategoryMultipliers map[string]float64 `yaml:"category_multipliers" json:"categoryMultipliers"`
	Milestones          []Milestone        `yaml:"milestones" json:"milestones"`
	LevelThresholds     []int              `yaml:"level_thresholds" json:"levelThresholds"`
	Quests              []QuestDef         `yaml:"quests" json:"quests"`
}

// DefaultRules returns the production tables.
func DefaultRules() Rules {
	return Rules{
		BasePoints: map[ImpactTier]int{
			ImpactHigh:   500,
			ImpactMedium: 200,
			ImpactLow:    100,
		},
		MiniWinRate: 0.2,
		CategoryMultipliers: map[string]float64{
			"sales":      1.5,
			"marketing":  1.3,
			"content":    1.2,
			"admin":      1.0,
			"learning":   1.1,
			"networking": 1.4,
		},
		Milestones: []Milestone{
			{Days: 3, Multiplier: 1.5, Reward: "Warming Up: 1.5x points"},
			{Days: 7, Multiplier: 2.0, Reward: "Week Warrior: 2x points"},
			{Days: 14, Multiplier: 2.5, Reward: "Fortnight Force: 2.5x points"},
			{Days: 21, Multiplier: 3.0, Reward: "Habit Formed: 3x points"},
			{Days: 30, Multiplier: 3.5, Reward: "Monthly Machine: 3.5x points"},
			{Days: 50, Multiplier: 4.0, Reward: "Unstoppable: 4x points"},
			{Days: 100, Multiplier: 5.0, Reward: "Legendary Hustler: 5x points"},
		},
		LevelThresholds: []int{0, 1000, 2500, 5000, 8500, 13000, 18500, 25000, 32500, 41000, 50000},
		Quests: []QuestDef{
			{ID: "earn-xp", Title: "Earn 50 XP", Icon: "⚡", Type: QuestXP, Target: 50, Reward: 25},
			{ID: "complete-tasks", Title: "Complete 3 Tasks", Icon: "✅", Type: QuestTasks, Target: 3, Reward: 30},
			{ID: "high-performance", Title: "Crush 2 High-Impact Tasks", Icon: "🚀", Type: QuestPerformance, Target: 2, Reward: 40},
			{ID: "maintain-streak", Title: "Reach a 5-Day Streak", Icon: "🔥", Type: QuestStreak, Target: 5, Reward: 35},
		},
	}
}

// Validate checks table shape. Lookups assume a validated Rules value.
func (r Rules) Validate() error {
	for _, tier := range []ImpactTier{ImpactHigh, ImpactMedium, ImpactLow} {
		if r.BasePoints[tier] <= 0 {
			return fmt.Errorf("rules: base points for %q must be positive", tier)
		}
	}
	if r.MiniWinRate <= 0 || r.MiniWinRate > 1 {
		return fmt.Errorf("rules: mini win rate %v out of range (0,1]", r.MiniWinRate)
	}
	for cat, m := range r.CategoryMultipliers {
		if m <= 0 {
			return fmt.Errorf("rules: category %q multiplier must be positive", cat)
		}
	}
	prevDays := 0
	for i, m := range r.Milestones {
		if m.Days <= prevDays {
			return fmt.Errorf("rules: milestone %d days must ascend (got %d after %d)", i, m.Days, prevDays)
		}
		if m.Multiplier <= 0 {
			return fmt.Errorf("rules: milestone %d multiplier must be positive", m.Days)
		}
		prevDays = m.Days
	}
	if len(r.LevelThresholds) == 0 || r.LevelThresholds[0] != 0 {
		return fmt.Errorf("rules: level thresholds must start at 0")
	}
	if !sort.SliceIsSorted(r.LevelThresholds, func(i, j int) bool { return r.LevelThresholds[i] < r.LevelThresholds[j] }) {
		return fmt.Errorf("rules: level thresholds must ascend")
	}
	for i := 1; i < len(r.LevelThresholds); i++ {
		if r.LevelThresholds[i] == r.LevelThresholds[i-1] {
			return fmt.Errorf("rules: duplicate level threshold %d", r.LevelThresholds[i])
		}
	}
	seen := make(map[string]bool, len(r.Quests))
	for _, q := range r.Quests {
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("rules: quest id is required")
		}
		if seen[q.ID] {
			return fmt.Errorf("rules: duplicate quest id %q", q.ID)
		}
		seen[q.ID] = true
		if !q.Type.IsValid() {
			return fmt.Errorf("rules: quest %q has unknown type %q", q.ID, q.Type)
		}
		if q.Target <= 0 {
			return fmt.Errorf("rules: quest %q target must be positive", q.ID)
		}
		if q.Reward < 0 {
			return fmt.Errorf("rules: quest %q reward must not be negative", q.ID)
		}
	}
	return nil
}

// StreakMultiplier returns the largest multiplier whose threshold is reached.
// Streaks below the first milestone earn 1.0.
func (r Rules) StreakMultiplier(streak int) float64 {
	best := 1.0
	for _, m := range r.Milestones {
		if m.Days <= streak && m.Multiplier > best {
			best = m.Multiplier
		}
	}
	return best
}

// CategoryMultiplier falls back to 1.0 for categories outside the table.
func (r Rules) CategoryMultiplier(category string) float64 {
	if m, ok := r.CategoryMultipliers[strings.TrimSpace(strings.ToLower(category))]; ok {
		return m
	}
	return 1.0
}

// NextMilestone returns the first milestone above streak, or nil once all are reached.
func (r Rules) NextMilestone(streak int) *Milestone {
	for i := range r.Milestones {
		if r.Milestones[i].Days > streak {
			m := r.Milestones[i]
			return &m
		}
	}
	return nil
}
