package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypeos/internal/hypeos"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, s.DB()))
	require.NoError(t, Migrate(ctx, s.DB()))
}

func TestUserRepo_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	missing, err := s.Users.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	last := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	st := hypeos.UserState{
		UserID:     "u1",
		HypePoints: 1234,
		Streak: hypeos.StreakState{
			CurrentStreak:   4,
			LongestStreak:   9,
			LastActiveDate:  last,
			StreakStartDate: last.AddDate(0, 0, -3),
			TotalDaysActive: 30,
		},
		Quests: hypeos.QuestState{
			Progress: hypeos.QuestProgress{TasksCompleted: 2, LastResetDate: "2024-03-03"},
			Quests:   []hypeos.Quest{{ID: "complete-tasks", Current: 2, Target: 3, Reward: 30, Type: hypeos.QuestTasks}},
		},
	}
	require.NoError(t, s.Users.Save(ctx, st))

	got, err := s.Users.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1234, got.HypePoints)
	assert.Equal(t, 4, got.Streak.CurrentStreak)
	assert.Equal(t, 9, got.Streak.LongestStreak)
	assert.True(t, got.Streak.LastActiveDate.Equal(last))
	assert.Equal(t, st.Quests, got.Quests)

	st.HypePoints = 2000
	require.NoError(t, s.Users.Save(ctx, st))
	got, err = s.Users.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2000, got.HypePoints)
}

func TestUserRepo_ZeroDatesStayZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Users.Save(ctx, hypeos.UserState{UserID: "fresh"}))
	got, err := s.Users.Load(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Streak.LastActiveDate.IsZero())
	assert.True(t, got.Streak.StreakStartDate.IsZero())
}

func TestTaskRepo_CRUDAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)

	goal := Goal{ID: "g1", UserID: "u1", Title: "Close Q2", CreatedAt: now}
	require.NoError(t, s.Goals.Insert(ctx, goal))

	gid := "g1"
	tasks := []hypeos.Task{
		{ID: "t1", UserID: "u1", GoalID: &gid, Title: "Call leads", ImpactTier: hypeos.ImpactHigh, Category: "sales", CreatedAt: now},
		{ID: "t2", UserID: "u1", Title: "Inbox zero", ImpactTier: hypeos.ImpactLow, Category: "admin", MiniWin: true, CreatedAt: now.Add(time.Minute)},
		{ID: "t3", UserID: "u2", Title: "Other user", ImpactTier: hypeos.ImpactLow, Category: "admin", CreatedAt: now},
	}
	for _, task := range tasks {
		require.NoError(t, s.Tasks.Insert(ctx, task))
	}

	got, err := s.Tasks.Get(ctx, "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.GoalID)
	assert.Equal(t, "g1", *got.GoalID)
	assert.Equal(t, hypeos.ImpactHigh, got.ImpactTier)

	other, err := s.Tasks.Get(ctx, "u1", "t3")
	require.NoError(t, err)
	assert.Nil(t, other)

	all, err := s.Tasks.List(ctx, "u1", TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byGoal, err := s.Tasks.List(ctx, "u1", TaskFilter{GoalID: "g1"})
	require.NoError(t, err)
	require.Len(t, byGoal, 1)
	assert.Equal(t, "t1", byGoal[0].ID)

	done := now.Add(time.Hour)
	require.NoError(t, s.Tasks.MarkDone(ctx, "u1", "t2", done, "2024-04-01", 120))

	yes := true
	completed, err := s.Tasks.List(ctx, "u1", TaskFilter{Completed: &yes})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "t2", completed[0].ID)
	assert.True(t, completed[0].MiniWin)
	assert.Equal(t, 120, completed[0].PointsAwarded)
	require.NotNil(t, completed[0].CompletedAt)

	onDay, err := s.Tasks.List(ctx, "u1", TaskFilter{Day: "2024-04-01"})
	require.NoError(t, err)
	assert.Len(t, onDay, 1)

	got.Title = "Call warm leads"
	require.NoError(t, s.Tasks.Update(ctx, *got))
	got, err = s.Tasks.Get(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Call warm leads", got.Title)

	require.NoError(t, s.Tasks.ClearGoal(ctx, "u1", "g1"))
	got, err = s.Tasks.Get(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Nil(t, got.GoalID)

	deleted, err := s.Tasks.Delete(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = s.Tasks.Delete(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGoalRepo_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)
	target := now.AddDate(0, 1, 0)

	require.NoError(t, s.Goals.Insert(ctx, Goal{ID: "g1", UserID: "u1", Title: "Launch", Category: "marketing", TargetDate: &target, CreatedAt: now}))
	require.NoError(t, s.Goals.Insert(ctx, Goal{ID: "g2", UserID: "u1", Title: "Learn Go", CreatedAt: now.Add(time.Second)}))

	list, err := s.Goals.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "g1", list[0].ID)
	require.NotNil(t, list[0].TargetDate)
	assert.Nil(t, list[1].TargetDate)

	g := list[1]
	g.Completed = true
	require.NoError(t, s.Goals.Update(ctx, g))
	got, err := s.Goals.Get(ctx, "u1", "g2")
	require.NoError(t, err)
	assert.True(t, got.Completed)

	ok, err := s.Goals.Delete(ctx, "u1", "g2")
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = s.Goals.Get(ctx, "u1", "g2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompletionRepo_PointsOnDayAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Completions.Insert(ctx, Completion{ID: "c1", UserID: "u1", TaskID: "t1", CompletedAt: at, Day: "2024-05-02", Points: 750}))
	require.NoError(t, s.Completions.Insert(ctx, Completion{ID: "c2", UserID: "u1", TaskID: "t2", CompletedAt: at.Add(time.Hour), Day: "2024-05-02", Points: 100}))
	require.NoError(t, s.Completions.Insert(ctx, Completion{ID: "c3", UserID: "u1", TaskID: "t3", CompletedAt: at.AddDate(0, 0, 1), Day: "2024-05-03", Points: 5}))
	require.NoError(t, s.Completions.SetQuestPoints(ctx, "c2", 30))

	n, err := s.Completions.PointsOnDay(ctx, "u1", "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, 850, n)

	n, err = s.Completions.PointsOnDay(ctx, "u1", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	recent, err := s.Completions.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c3", recent[0].ID)
	assert.Equal(t, "c2", recent[1].ID)
	assert.Equal(t, 30, recent[1].QuestPoints)
}

func TestCompletionRepo_OnDayOutlivesTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Tasks.Insert(ctx, hypeos.Task{ID: "t1", UserID: "u1", Title: "Pitch", ImpactTier: hypeos.ImpactHigh, Category: "sales", CreatedAt: at}))
	require.NoError(t, s.Completions.Insert(ctx, Completion{ID: "c1", UserID: "u1", TaskID: "t1", CompletedAt: at, Day: "2024-05-02", ImpactTier: hypeos.ImpactHigh, Points: 750}))
	require.NoError(t, s.Completions.Insert(ctx, Completion{ID: "c2", UserID: "u1", TaskID: "t2", CompletedAt: at.Add(time.Hour), Day: "2024-05-02", ImpactTier: hypeos.ImpactLow, Points: 100}))
	require.NoError(t, s.Completions.Insert(ctx, Completion{ID: "c3", UserID: "u1", TaskID: "t3", CompletedAt: at.AddDate(0, 0, 1), Day: "2024-05-03", ImpactTier: hypeos.ImpactHigh, Points: 500}))

	ok, err := s.Tasks.Delete(ctx, "u1", "t1")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Completions.OnDay(ctx, "u1", "2024-05-02")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, hypeos.ImpactHigh, got[0].ImpactTier)
	assert.Equal(t, hypeos.ImpactLow, got[1].ImpactTier)

	tasks := AsTasks(got)
	require.Len(t, tasks, 2)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "t1", tasks[0].ID)
	p := hypeos.BuildQuestProgress(tasks, 850, 1, at)
	assert.Equal(t, 2, p.TasksCompleted)
	assert.Equal(t, 1, p.HighImpactTasks)
}

func TestStore_InTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(r *Repos) error {
		if err := r.Users.Save(ctx, hypeos.UserState{UserID: "u1", HypePoints: 10}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.Users.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.InTx(ctx, func(r *Repos) error {
		return r.Users.Save(ctx, hypeos.UserState{UserID: "u1", HypePoints: 10})
	}))
	got, err = s.Users.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.HypePoints)
}

func TestResolveDBPath(t *testing.T) {
	p, err := ResolveDBPath("/tmp/x.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", p)

	p, err = ResolveDBPath(MemoryPath)
	require.NoError(t, err)
	assert.Equal(t, MemoryPath, p)

	p, err = ResolveDBPath("")
	require.NoError(t, err)
	assert.Equal(t, ".hypeos.db", filepath.Base(p))
}
