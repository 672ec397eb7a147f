package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
	"hypeos/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID string

	width  int
	height int

	dash  *engine.Dashboard
	tasks []hypeos.Task

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	dash  *engine.Dashboard
	tasks []hypeos.Task
	err   error
}

type completedMsg struct {
	id  string
	res *engine.CompleteResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, userID string) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		d, err := m.svc.Dashboard(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		pending := false
		tasks, err := m.svc.ListTasks(m.ctx, m.userID, storage.TaskFilter{Completed: &pending})
		if err != nil {
			return loadedMsg{err: err}
		}
		sortPending(tasks)
		return loadedMsg{dash: d, tasks: tasks}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, m.userID, id)
		return completedMsg{id: id, res: res, err: err}
	}
}

// sortPending puts heavier tiers first, then oldest first.
func sortPending(tasks []hypeos.Task) {
	rank := map[hypeos.ImpactTier]int{hypeos.ImpactHigh: 0, hypeos.ImpactMedium: 1, hypeos.ImpactLow: 2}
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := rank[tasks[i].ImpactTier], rank[tasks[j].ImpactTier]
		if ri != rj {
			return ri < rj
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.dash = msg.dash
		m.tasks = msg.tasks
		if m.selected >= len(m.tasks) {
			m.selected = max(0, len(m.tasks)-1)
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completionLog(msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "space", "enter":
			if m.selected < 0 || m.selected >= len(m.tasks) {
				m.lastLog = "Nothing to complete."
				return m, nil
			}
			t := m.tasks[m.selected]
			m.lastLog = fmt.Sprintf("Completing %q…", t.Title)
			return m, m.completeCmd(t.ID)
		}
	}
	return m, nil
}

func completionLog(res *engine.CompleteResult) string {
	s := fmt.Sprintf("%s %s: +%d points", ui.IconDone, res.Task.Title, res.Points.TotalPoints)
	if res.Points.BonusPoints > 0 {
		s += fmt.Sprintf(" (+%d mini-win)", res.Points.BonusPoints)
	}
	if res.QuestPoints > 0 {
		s += fmt.Sprintf(", +%d quests", res.QuestPoints)
	}
	if res.LevelUp {
		s += fmt.Sprintf(" | %s %d", ui.BadgeLevelUp, res.LevelAfter.Level)
	}
	if res.Milestone != nil {
		s += " | " + ui.IconHype + " " + res.Milestone.Reward
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 34
	if m.width > 0 {
		leftW = max(22, min(leftW, m.width/2))
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.dash == nil {
		return ui.Title.Render("HypeOS") + " " + ui.Muted.Render("loading…")
	}
	d := m.dash
	return fmt.Sprintf("%s | %s %d | Level %d %s | %s %d day(s) x%.1f",
		ui.Title.Render("HypeOS"),
		ui.IconBolt, d.HypePoints,
		d.Level.Level, ui.ProgressBar(d.Level.Progress, 24),
		ui.IconHype, d.Streak.CurrentStreak, d.StreakStatus.Multiplier,
	)
}

func (m boardModel) renderSidebar() string {
	lines := []string{ui.PanelTitle.Render("Daily Quests")}
	if m.dash == nil {
		lines = append(lines, "Loading…")
		return strings.Join(lines, "\n")
	}
	for _, q := range m.dash.Quests {
		lines = append(lines, ui.QuestLine(q))
	}
	lines = append(lines, ui.Muted.Render(fmt.Sprintf("%d%% done, +%d earned", m.dash.QuestCompletionRate, m.dash.QuestRewardsEarned)))
	lines = append(lines, "")
	lines = append(lines, ui.PanelTitle.Render("Today"))
	lines = append(lines, fmt.Sprintf("%d points, %d task(s) done", m.dash.TodayPoints, m.dash.CompletedToday))
	if ms := m.dash.StreakStatus.NextMilestone; ms != nil {
		lines = append(lines, ui.Muted.Render(fmt.Sprintf("%d day(s) to %s", m.dash.StreakStatus.DaysToNextMilestone, ms.Reward)))
	}
	lines = append(lines, "")
	lines = append(lines, ui.PanelTitle.Render("Keys"))
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space/enter: complete")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{ui.PanelTitle.Render("Pending Tasks")}
	if len(m.tasks) == 0 {
		out = append(out, ui.Muted.Render("(nothing pending, add one with `hype add`)"))
		return strings.Join(out, "\n")
	}
	for i, t := range m.tasks {
		row := fmt.Sprintf("%s %s [%s] %s", ui.TaskIcon(t), t.Title, t.ImpactTier, ui.Muted.Render(t.Category))
		if i == m.selected {
			out = append(out, ui.SelectedRow.Render("> "+row))
			continue
		}
		out = append(out, "  "+row)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

// padRight pads s to width visible cells. Styled text is measured without
// its escape codes; overlong lines are left as is.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if width <= 0 || w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
