package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hypeos/internal/hypeos"
)

// HypeOS theme (CLI + TUI).

const (
	IconHype    = "🔥"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconTarget  = "🎯"
	IconRocket  = "🚀"
	IconScroll  = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// ImpactText colors a tier by weight.
func ImpactText(tier hypeos.ImpactTier) string {
	switch tier {
	case hypeos.ImpactHigh:
		return Bad.Render("high")
	case hypeos.ImpactMedium:
		return Warn.Render("medium")
	case hypeos.ImpactLow:
		return Good.Render("low")
	default:
		return Muted.Render(string(tier))
	}
}

func TaskIcon(t hypeos.Task) string {
	switch {
	case t.Completed:
		return IconDone
	case t.MiniWin:
		return IconSparkle
	case t.ImpactTier == hypeos.ImpactHigh:
		return IconRocket
	default:
		return IconTarget
	}
}

// ProgressBar renders a fixed-width bar for pct in [0,100].
func ProgressBar(pct float64, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

// QuestLine is one quest as "icon title current/target" with a check when done.
func QuestLine(q hypeos.Quest) string {
	mark := Muted.Render("·")
	if q.Completed {
		mark = Good.Render("✓")
	}
	return fmt.Sprintf("%s %s %s %s %s", mark, q.Icon, q.Title,
		Muted.Render(fmt.Sprintf("%d/%d", q.Current, q.Target)),
		Gold.Render(fmt.Sprintf("+%d", q.Reward)))
}
