package hypeos

import (
	"fmt"
	"strings"
	"time"
)

type ImpactTier string

const (
	ImpactHigh   ImpactTier = "high"
	ImpactMedium ImpactTier = "medium"
	ImpactLow    ImpactTier = "low"
)

func (t ImpactTier) IsValid() bool {
	switch t {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	default:
		return false
	}
}

// ParseImpactTier normalizes user input. Unlike categories, tiers are a closed set.
func ParseImpactTier(input string) (ImpactTier, error) {
	t := ImpactTier(strings.TrimSpace(strings.ToLower(input)))
	if !t.IsValid() {
		return "", &InputError{Field: "impactTier", Value: input}
	}
	return t, nil
}

type QuestType string

const (
	QuestTasks       QuestType = "tasks"
	QuestXP          QuestType = "xp"
	QuestStreak      QuestType = "streak"
	QuestPerformance QuestType = "performance"
)

func (q QuestType) IsValid() bool {
	switch q {
	case QuestTasks, QuestXP, QuestStreak, QuestPerformance:
		return true
	default:
		return false
	}
}

// DateLayout is the calendar date format used for quest reset boundaries.
const DateLayout = "2006-01-02"

// DateKey returns the local calendar date of t as a string.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId,omitempty"`
	GoalID        *string    `json:"goalId,omitempty"`
	Title         string     `json:"title"`
	ImpactTier    ImpactTier `json:"impactTier"`
	Category      string     `json:"category"`
	MiniWin       bool       `json:"miniWin"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	PointsAwarded int        `json:"pointsAwarded"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// CompletedOn reports whether the task was completed on the calendar day of day,
// evaluated in day's location.
func (t Task) CompletedOn(day time.Time) bool {
	if !t.Completed || t.CompletedAt == nil {
		return false
	}
	return DateKey(t.CompletedAt.In(day.Location())) == DateKey(day)
}

type StreakState struct {
	CurrentStreak   int       `json:"currentStreak"`
	LongestStreak   int       `json:"longestStreak"`
	LastActiveDate  time.Time `json:"lastActiveDate"`
	StreakStartDate time.Time `json:"streakStartDate"`
	TotalDaysActive int       `json:"totalDaysActive"`
}

// PointsCalculation is the derived score of a single completion.
type PointsCalculation struct {
	BasePoints         int     `json:"basePoints"`
	StreakMultiplier   float64 `json:"streakMultiplier"`
	CategoryMultiplier float64 `json:"categoryMultiplier"`
	TotalPoints        int     `json:"totalPoints"`
	BonusPoints        int     `json:"bonusPoints"`
}

type Quest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	Current   int       `json:"current"`
	Target    int       `json:"target"`
	Completed bool      `json:"completed"`
	Reward    int       `json:"reward"`
	Type      QuestType `json:"type"`
}

type QuestProgress struct {
	TasksCompleted  int    `json:"tasksCompleted"`
	XPEarned        int    `json:"xpEarned"`
	StreakCount     int    `json:"streakCount"`
	HighImpactTasks int    `json:"highImpactTasks"`
	LastResetDate   string `json:"lastResetDate"`
}

// QuestState is the persisted per-user quest record.
type QuestState struct {
	Progress QuestProgress `json:"progress"`
	Quests   []Quest       `json:"quests"`
}

type QuestReward struct {
	QuestID string `json:"questId"`
	Points  int    `json:"points"`
	Message string `json:"message"`
}

// UserState is everything the core needs about one user between events.
type UserState struct {
	UserID     string      `json:"userId"`
	HypePoints int         `json:"hypePoints"`
	Streak     StreakState `json:"streak"`
	Quests     QuestState  `json:"quests"`
}

func rewardMessage(q Quest) string {
	return fmt.Sprintf("Quest complete: %s! +%d points", q.Title, q.Reward)
}
