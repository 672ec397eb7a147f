package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"hypeos/internal/engine"
)

// RunBoard opens the interactive board for userID until the user quits.
func RunBoard(ctx context.Context, svc *engine.Service, userID string, out io.Writer) error {
	m := newBoardModel(ctx, svc, userID)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
