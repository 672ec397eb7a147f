package hypeos

import (
	"math"
	"time"
)

func (e *Engine) freshQuests() []Quest {
	out := make([]Quest, 0, len(e.rules.Quests))
	for _, d := range e.rules.Quests {
		out = append(out, Quest{
			ID:     d.ID,
			Title:  d.Title,
			Icon:   d.Icon,
			Target: d.Target,
			Reward: d.Reward,
			Type:   d.Type,
		})
	}
	return out
}

// InitializeQuests returns the quest state valid for today. A missing record or
// one stamped with another date yields the zeroed catalog; otherwise saved
// per-quest progress is carried onto the current catalog by id.
func (e *Engine) InitializeQuests(saved *QuestState, today string) QuestState {
	quests := e.freshQuests()
	if saved == nil || saved.Progress.LastResetDate != today {
		return QuestState{
			Progress: QuestProgress{LastResetDate: today},
			Quests:   quests,
		}
	}

	byID := make(map[string]Quest, len(saved.Quests))
	for _, q := range saved.Quests {
		byID[q.ID] = q
	}
	for i := range quests {
		prev, ok := byID[quests[i].ID]
		if !ok {
			continue
		}
		quests[i].Current = min(max(prev.Current, 0), quests[i].Target)
		quests[i].Completed = prev.Completed || quests[i].Current >= quests[i].Target
	}
	return QuestState{Progress: saved.Progress, Quests: quests}
}

func progressFor(t QuestType, p QuestProgress) (int, bool) {
	switch t {
	case QuestTasks:
		return p.TasksCompleted, true
	case QuestXP:
		return p.XPEarned, true
	case QuestStreak:
		return p.StreakCount, true
	case QuestPerformance:
		return p.HighImpactTasks, true
	default:
		return 0, false
	}
}

// UpdateQuestProgress recomputes every quest from the snapshot. Current is
// clamped to Target. The input slice is not modified.
func (e *Engine) UpdateQuestProgress(quests []Quest, progress QuestProgress) ([]Quest, error) {
	out := make([]Quest, len(quests))
	for i, q := range quests {
		v, ok := progressFor(q.Type, progress)
		if !ok {
			return nil, &InputError{Field: "quest.type", Value: q.Type}
		}
		q.Current = min(max(v, 0), q.Target)
		q.Completed = q.Current >= q.Target
		out[i] = q
	}
	return out, nil
}

// CheckQuestCompletions emits one reward per quest that went from incomplete
// in oldQuests to complete in newQuests. Quests are paired by id; a quest
// missing from oldQuests counts as previously incomplete.
func (e *Engine) CheckQuestCompletions(oldQuests, newQuests []Quest) []QuestReward {
	before := make(map[string]bool, len(oldQuests))
	for _, q := range oldQuests {
		before[q.ID] = q.Completed
	}
	var rewards []QuestReward
	for _, q := range newQuests {
		if !q.Completed || before[q.ID] {
			continue
		}
		rewards = append(rewards, QuestReward{
			QuestID: q.ID,
			Points:  q.Reward,
			Message: rewardMessage(q),
		})
	}
	return rewards
}

// GetQuestCompletionRate is the rounded percentage of completed quests.
func GetQuestCompletionRate(quests []Quest) int {
	if len(quests) == 0 {
		return 0
	}
	done := 0
	for _, q := range quests {
		if q.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(quests)) * 100))
}

func GetTotalQuestRewards(quests []Quest) int {
	total := 0
	for _, q := range quests {
		if q.Completed {
			total += q.Reward
		}
	}
	return total
}

// BuildQuestProgress derives the snapshot for today from the task list, the
// points earned today and the streak length.
func BuildQuestProgress(tasks []Task, xpEarned, streakCount int, today time.Time) QuestProgress {
	p := QuestProgress{
		XPEarned:      xpEarned,
		StreakCount:   streakCount,
		LastResetDate: DateKey(today),
	}
	for _, t := range tasks {
		if !t.CompletedOn(today) {
			continue
		}
		p.TasksCompleted++
		if t.ImpactTier == ImpactHigh {
			p.HighImpactTasks++
		}
	}
	return p
}
