package root

import (
	"github.com/spf13/cobra"

	"hypeos/internal/tui"
)

func newBoardCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, s.svc, s.userID, cmd.OutOrStdout())
		},
	}

	return cmd
}
