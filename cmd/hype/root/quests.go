package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"hypeos/internal/hypeos"
	"hypeos/internal/ui"
)

func newQuestsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Show today's daily quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			qs, err := s.svc.Quests(ctx, s.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Daily Quests "+qs.Progress.LastResetDate))
			for _, q := range qs.Quests {
				fmt.Fprintln(out, ui.QuestLine(q))
			}
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d%% complete, %d points earned",
				hypeos.GetQuestCompletionRate(qs.Quests), hypeos.GetTotalQuestRewards(qs.Quests))))
			return nil
		},
	}

	return cmd
}
