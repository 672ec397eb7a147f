package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

const testUser = "u1"

var day1 = time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *FakeClock) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clock := NewFakeClock(day1)
	svc := NewService(db, Options{Clock: clock, Location: time.UTC})
	return svc, clock
}

func mustCreate(t *testing.T, svc *Service, title, tier, category string) *hypeos.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), testUser, CreateTaskInput{Title: title, ImpactTier: tier, Category: category})
	if err != nil {
		t.Fatalf("CreateTask(%s): %v", title, err)
	}
	return task
}

func mustComplete(t *testing.T, svc *Service, id string) *CompleteResult {
	t.Helper()
	res, err := svc.CompleteTask(context.Background(), testUser, id)
	if err != nil {
		t.Fatalf("CompleteTask(%s): %v", id, err)
	}
	return res
}

func TestCompleteTask_FirstDayFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	high := mustCreate(t, svc, "Close the deal", "high", "Sales")
	med := mustCreate(t, svc, "Expense report", "medium", "admin")
	low := mustCreate(t, svc, "Read a chapter", "low", "learning")
	assert.Equal(t, "sales", high.Category)

	res := mustComplete(t, svc, high.ID)
	assert.Equal(t, 750, res.Points.TotalPoints)
	assert.Equal(t, 1, res.StreakAfter.CurrentStreak)
	assert.Equal(t, 0, res.StreakBefore.CurrentStreak)
	require.Len(t, res.QuestRewards, 1)
	assert.Equal(t, "earn-xp", res.QuestRewards[0].QuestID)
	assert.Equal(t, 775, res.HypePoints)
	assert.True(t, res.Task.Completed)

	res = mustComplete(t, svc, med.ID)
	assert.Equal(t, 200, res.Points.TotalPoints)
	assert.Empty(t, res.QuestRewards)
	assert.Equal(t, 1, res.StreakAfter.CurrentStreak)

	res = mustComplete(t, svc, low.ID)
	assert.Equal(t, 110, res.Points.TotalPoints)
	require.Len(t, res.QuestRewards, 1)
	assert.Equal(t, "complete-tasks", res.QuestRewards[0].QuestID)
	assert.Equal(t, 30, res.QuestPoints)
	assert.Equal(t, 775+200+110+30, res.HypePoints)
	assert.Equal(t, 1, res.LevelBefore.Level)
	assert.Equal(t, 2, res.LevelAfter.Level)
	assert.True(t, res.LevelUp)

	dash, err := svc.Dashboard(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1115, dash.HypePoints)
	assert.Equal(t, 1060, dash.TodayPoints)
	assert.Equal(t, 3, dash.CompletedToday)
	assert.Equal(t, 0, dash.PendingTasks)
	assert.Equal(t, 3, dash.QuestProgress.TasksCompleted)
	assert.Equal(t, 1, dash.QuestProgress.HighImpactTasks)
	assert.Equal(t, 50, dash.QuestCompletionRate)
	assert.Equal(t, 55, dash.QuestRewardsEarned)
	assert.True(t, dash.StreakStatus.IsActive)
	assert.Equal(t, 1, dash.BadgesEarned)
	assert.Equal(t, 16, dash.BadgesTotal)
}

func TestCompleteTask_QuestPaysOncePerDayAfterDeletion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	paid := 0
	complete := func(id string) {
		t.Helper()
		for _, r := range mustComplete(t, svc, id).QuestRewards {
			if r.QuestID == "high-performance" {
				paid++
			}
		}
	}
	highPerformance := func() hypeos.Quest {
		t.Helper()
		qs, err := svc.Quests(ctx, testUser)
		require.NoError(t, err)
		for _, q := range qs.Quests {
			if q.ID == "high-performance" {
				return q
			}
		}
		t.Fatalf("high-performance quest missing")
		return hypeos.Quest{}
	}

	a := mustCreate(t, svc, "Pitch A", "high", "admin")
	b := mustCreate(t, svc, "Pitch B", "high", "admin")
	complete(a.ID)
	complete(b.ID)
	require.Equal(t, 1, paid)

	require.NoError(t, svc.DeleteTask(ctx, testUser, a.ID))

	c := mustCreate(t, svc, "Inbox zero", "low", "admin")
	complete(c.ID)
	q := highPerformance()
	assert.True(t, q.Completed, "stays complete after a completed task is deleted")
	assert.Equal(t, 2, q.Current)

	d := mustCreate(t, svc, "Pitch D", "high", "admin")
	complete(d.ID)
	assert.Equal(t, 1, paid, "reward paid once for the day")
	assert.True(t, highPerformance().Completed)

	qs, err := svc.Quests(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 4, qs.Progress.TasksCompleted)
	assert.Equal(t, 3, qs.Progress.HighImpactTasks)

	dash, err := svc.Dashboard(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 4, dash.CompletedToday)
}

func TestHoldDayProgress(t *testing.T) {
	old := []hypeos.Quest{
		{ID: "high-performance", Current: 2, Target: 2, Completed: true},
		{ID: "complete-tasks", Current: 1, Target: 3},
	}
	next := []hypeos.Quest{
		{ID: "complete-tasks", Current: 2, Target: 3},
		{ID: "high-performance", Current: 1, Target: 2},
		{ID: "earn-xp", Current: 10, Target: 50},
	}
	got := holdDayProgress(old, next)
	assert.Equal(t, hypeos.Quest{ID: "complete-tasks", Current: 2, Target: 3}, got[0])
	assert.Equal(t, hypeos.Quest{ID: "high-performance", Current: 2, Target: 2, Completed: true}, got[1])
	assert.Equal(t, 10, got[2].Current)
}

func TestCompleteTask_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteTask(ctx, testUser, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	task := mustCreate(t, svc, "One", "low", "admin")
	mustComplete(t, svc, task.ID)
	_, err = svc.CompleteTask(ctx, testUser, task.ID)
	assert.ErrorIs(t, err, ErrTaskCompleted)

	_, err = svc.CompleteTask(ctx, "other-user", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = svc.CompleteTask(ctx, "", task.ID)
	assert.ErrorIs(t, err, hypeos.ErrInvalidInput)
}

func TestCompleteTask_StreakAcrossDays(t *testing.T) {
	svc, clock := newTestService(t)

	var last *CompleteResult
	for i := 0; i < 3; i++ {
		task := mustCreate(t, svc, "Daily outreach", "low", "admin")
		last = mustComplete(t, svc, task.ID)
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, 3, last.StreakAfter.CurrentStreak)
	assert.Equal(t, 1.5, last.Points.StreakMultiplier)
	assert.Equal(t, 150, last.Points.TotalPoints)
	require.NotNil(t, last.Milestone)
	assert.Equal(t, 3, last.Milestone.Days)

	// Skip two days.
	clock.Advance(2 * 24 * time.Hour)
	task := mustCreate(t, svc, "Back at it", "low", "admin")
	res := mustComplete(t, svc, task.ID)
	assert.True(t, res.StreakReset)
	assert.Equal(t, 1, res.StreakAfter.CurrentStreak)
	assert.Equal(t, 3, res.StreakAfter.LongestStreak)
	assert.Equal(t, 4, res.StreakAfter.TotalDaysActive)
	assert.Equal(t, 100, res.Points.TotalPoints)
}

func TestCompleteTask_ClockSkewLeavesStateUntouched(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, "Today", "medium", "admin")
	second := mustCreate(t, svc, "Backdated", "high", "sales")
	mustComplete(t, svc, first.ID)

	before, err := svc.State(ctx, testUser)
	require.NoError(t, err)

	clock.Set(day1.AddDate(0, 0, -2))
	_, err = svc.CompleteTask(ctx, testUser, second.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, hypeos.ErrClockSkew))

	clock.Set(day1)
	after, err := svc.State(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, before.HypePoints, after.HypePoints)
	assert.Equal(t, before.Streak.CurrentStreak, after.Streak.CurrentStreak)

	got, err := svc.GetTask(ctx, testUser, second.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)

	recent, err := svc.RecentCompletions(ctx, testUser, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestDashboard_ResetsQuestsOnNewDay(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task := mustCreate(t, svc, "Task", "low", "admin")
		mustComplete(t, svc, task.ID)
	}
	quests, err := svc.Quests(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", quests.Progress.LastResetDate)
	assert.Greater(t, hypeos.GetQuestCompletionRate(quests.Quests), 0)

	clock.Advance(24 * time.Hour)
	dash, err := svc.Dashboard(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", dash.QuestProgress.LastResetDate)
	assert.Equal(t, 0, dash.QuestCompletionRate)
	for _, q := range dash.Quests {
		assert.Equal(t, 0, q.Current, q.ID)
	}
	assert.Equal(t, 0, dash.TodayPoints)
	assert.True(t, dash.StreakStatus.CanMaintain)

	// The reset is persisted.
	stored, err := svc.Store().Users.Load(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", stored.Quests.Progress.LastResetDate)
}

func TestTasksAndGoals_CRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, testUser, CreateTaskInput{Title: "  ", ImpactTier: "high"})
	assert.ErrorIs(t, err, hypeos.ErrInvalidInput)
	_, err = svc.CreateTask(ctx, testUser, CreateTaskInput{Title: "x", ImpactTier: "urgent"})
	assert.ErrorIs(t, err, hypeos.ErrInvalidInput)
	_, err = svc.CreateTask(ctx, testUser, CreateTaskInput{Title: "x", ImpactTier: "low", GoalID: "nope"})
	assert.ErrorIs(t, err, ErrGoalNotFound)

	goal, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{Title: "Launch podcast", Category: "Content"})
	require.NoError(t, err)
	assert.Equal(t, "content", goal.Category)

	task, err := svc.CreateTask(ctx, testUser, CreateTaskInput{Title: "Record pilot", ImpactTier: "HIGH", GoalID: goal.ID})
	require.NoError(t, err)
	assert.Equal(t, hypeos.ImpactHigh, task.ImpactTier)
	assert.Equal(t, DefaultCategory, task.Category)

	title := "Record and edit pilot"
	tier := "medium"
	updated, err := svc.UpdateTask(ctx, testUser, task.ID, UpdateTaskInput{Title: &title, ImpactTier: &tier})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, hypeos.ImpactMedium, updated.ImpactTier)

	byGoal, err := svc.ListTasks(ctx, testUser, storage.TaskFilter{GoalID: goal.ID})
	require.NoError(t, err)
	assert.Len(t, byGoal, 1)

	require.NoError(t, svc.DeleteGoal(ctx, testUser, goal.ID))
	_, err = svc.GetGoal(ctx, testUser, goal.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)
	got, err := svc.GetTask(ctx, testUser, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GoalID)

	mustComplete(t, svc, task.ID)
	_, err = svc.UpdateTask(ctx, testUser, task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrTaskCompleted)

	require.NoError(t, svc.DeleteTask(ctx, testUser, task.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, testUser, task.ID), ErrTaskNotFound)

	goals, err := svc.ListGoals(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestUpdateGoal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	target := day1.AddDate(0, 1, 0)
	goal, err := svc.CreateGoal(ctx, testUser, CreateGoalInput{Title: "Ship v1", TargetDate: &target})
	require.NoError(t, err)

	done := true
	g, err := svc.UpdateGoal(ctx, testUser, goal.ID, UpdateGoalInput{Completed: &done, ClearTarget: true})
	require.NoError(t, err)
	assert.True(t, g.Completed)
	assert.Nil(t, g.TargetDate)

	_, err = svc.UpdateGoal(ctx, testUser, "missing", UpdateGoalInput{Completed: &done})
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestPointsQueries(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	preview, err := svc.PreviewPoints(ctx, testUser, PreviewInput{ImpactTier: "high", Category: "sales"})
	require.NoError(t, err)
	assert.Equal(t, 750, preview.TotalPoints)

	a := mustCreate(t, svc, "A", "high", "sales")
	b := mustCreate(t, svc, "B", "low", "admin")
	mustComplete(t, svc, a.ID)
	mustComplete(t, svc, b.ID)

	clock.Advance(24 * time.Hour)
	c := mustCreate(t, svc, "C", "medium", "admin")
	mustComplete(t, svc, c.ID)

	// Folds score against the current streak (2 days, no multiplier yet).
	daily, err := svc.DailyPoints(ctx, testUser, day1)
	require.NoError(t, err)
	assert.Equal(t, 850, daily)

	week, err := svc.WeeklyPoints(ctx, testUser, clock.Now())
	require.NoError(t, err)
	require.Len(t, week.Daily, 7)
	assert.Equal(t, 850, week.Daily[5])
	assert.Equal(t, 200, week.Daily[6])
	assert.Equal(t, 1050, week.Total)

	br, err := svc.Breakdown(ctx, testUser, day1)
	require.NoError(t, err)
	assert.Equal(t, 750, br.ByCategory["sales"])
	assert.Equal(t, 100, br.ByImpact[hypeos.ImpactLow])

	// Third consecutive day would reach the 1.5x milestone.
	clock.Advance(24 * time.Hour)
	preview, err = svc.PreviewPoints(ctx, testUser, PreviewInput{ImpactTier: "low", Category: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, preview.StreakMultiplier)
	assert.Equal(t, 150, preview.TotalPoints)
}

func TestPreviewPoints_ClockSkew(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, "Today", "low", "admin")
	mustComplete(t, svc, task.ID)

	clock.Set(day1.AddDate(0, 0, -1))
	_, err := svc.PreviewPoints(ctx, testUser, PreviewInput{ImpactTier: "high", Category: "sales"})
	assert.ErrorIs(t, err, hypeos.ErrClockSkew)
}

func TestCompleteTask_ConcurrentSameUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, mustCreate(t, svc, "Parallel", "low", "admin").ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids)*2)
	for _, id := range ids {
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := svc.CompleteTask(ctx, testUser, id); err != nil {
					errs <- err
				}
			}(id)
		}
	}
	wg.Wait()
	close(errs)

	rejected := 0
	for err := range errs {
		require.ErrorIs(t, err, ErrTaskCompleted)
		rejected++
	}
	assert.Equal(t, len(ids), rejected)

	st, err := svc.State(ctx, testUser)
	require.NoError(t, err)
	// 8 x 100 task points, plus earn-xp (25) and complete-tasks (30) once each.
	assert.Equal(t, 800+25+30, st.HypePoints)
	assert.Equal(t, 1, st.Streak.CurrentStreak)
	assert.Equal(t, 0, svc.locks.size())
}

func TestAchievements(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task := mustCreate(t, svc, "Grind", "high", "sales")
		mustComplete(t, svc, task.ID)
		clock.Advance(24 * time.Hour)
	}

	list, err := svc.Achievements(ctx, testUser)
	require.NoError(t, err)
	earned := map[string]bool{}
	for _, a := range list {
		earned[a.ID] = a.Earned
	}
	assert.True(t, earned["first_win"])
	assert.False(t, earned["productive"])
	assert.True(t, earned["streak_3"])
	assert.False(t, earned["streak_7"])
	assert.True(t, earned["getting_started"])
	assert.False(t, earned["max_level"])
}
