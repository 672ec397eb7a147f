package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"hypeos/internal/ui"
)

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task (completed tasks keep their points)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveTaskID(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := s.svc.DeleteTask(ctx, s.userID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Deleted "+shortID(id)))
			return nil
		},
	}
}
