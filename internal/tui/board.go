package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
)

// RunBoard runs one interactive session until the user quits. The session's
// state lives only as long as the program.
func RunBoard(ctx context.Context, sess *engine.Session, gate *auth.Gate, logger *zap.Logger, out io.Writer) error {
	m := newBoardModel(ctx, sess, gate, logger)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
