package root

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
	"lifequest/internal/logging"
	"lifequest/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive habit board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			// The board owns the terminal, so it never logs to stderr.
			boardLog, err := logging.ForTerminalUI(cfg.Logging, verbose)
			if err != nil {
				return err
			}
			defer func() { _ = boardLog.Sync() }()

			svc, cleanup, err := openAuth(ctx, boardLog)
			if err != nil {
				return err
			}
			defer cleanup()

			gate := auth.NewGate(svc)
			sess := engine.NewSession(engine.NewState(cfg.EngineOptions()), gate)
			sess.OnChange(func(c engine.Change) {
				boardLog.Debug("state changed",
					zap.String("kind", string(c.Kind)),
					zap.String("name", c.Name),
					zap.Int("delta", c.Delta),
					zap.Int("balance", c.Snapshot.TotalPoints))
			})

			return tui.RunBoard(ctx, sess, gate, boardLog.Named("tui"), cmd.OutOrStdout())
		},
	}

	return cmd
}
