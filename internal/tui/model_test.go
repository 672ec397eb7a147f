package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

const boardUser = "board"

func newBoard(t *testing.T) (boardModel, *engine.Service) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := engine.NewFakeClock(time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC))
	svc := engine.NewService(db, engine.Options{Clock: clock, Location: time.UTC})
	return newBoardModel(ctx, svc, boardUser), svc
}

// step applies msg and runs the returned command once, feeding its result back.
func step(t *testing.T, m boardModel, msg tea.Msg) boardModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(boardModel)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(boardModel)
	}
	return m
}

func TestBoard_LoadAndComplete(t *testing.T) {
	m, svc := newBoard(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, boardUser, engine.CreateTaskInput{Title: "Write post", ImpactTier: "low", Category: "content"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, boardUser, engine.CreateTaskInput{Title: "Pitch client", ImpactTier: "high", Category: "sales"})
	require.NoError(t, err)

	next, _ := m.Update(m.Init()())
	m = next.(boardModel)
	require.NoError(t, m.err)
	require.Len(t, m.tasks, 2)
	assert.Equal(t, "Pitch client", m.tasks[0].Title, "high impact first")
	assert.Contains(t, m.View(), "Daily Quests")

	// Completing emits a completedMsg, which in turn schedules a reload.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(boardModel)
	require.NotNil(t, cmd)
	next, reload := m.Update(cmd())
	m = next.(boardModel)
	assert.Contains(t, m.lastLog, "+750 points")
	require.NotNil(t, reload)
	next, _ = m.Update(reload())
	m = next.(boardModel)

	require.Len(t, m.tasks, 1)
	assert.Equal(t, "Write post", m.tasks[0].Title)
	require.NotNil(t, m.dash)
	assert.Equal(t, 775, m.dash.HypePoints)
}

func TestBoard_Navigation(t *testing.T) {
	m, _ := newBoard(t)
	m.tasks = []hypeos.Task{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	m.loading = false

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected, "stays on last row")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, m.selected)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBoard_CompleteWithNothingSelected(t *testing.T) {
	m, _ := newBoard(t)
	m.loading = false

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(boardModel)
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing to complete.", m.lastLog)
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.True(t, strings.HasPrefix(padRight("x", 0), "x"))
}
