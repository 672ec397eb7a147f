package root

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hypeos/internal/engine"
	"hypeos/internal/ui"
)

func newDoCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
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
			res, err := s.svc.CompleteTask(ctx, s.userID, id)
			if err != nil {
				return err
			}
			printCompletion(cmd.OutOrStdout(), res)
			return nil
		},
	}

	return cmd
}

func printCompletion(out io.Writer, res *engine.CompleteResult) {
	p := res.Points
	fmt.Fprintf(out, "%s %s\n", ui.IconDone, ui.Title.Render(res.Task.Title))
	fmt.Fprintf(out, "  %s %s\n", ui.Gold.Render(fmt.Sprintf("+%d points", p.TotalPoints)),
		ui.Muted.Render(fmt.Sprintf("(base %d x%.1f streak x%.1f category)", p.BasePoints, p.StreakMultiplier, p.CategoryMultiplier)))
	if p.BonusPoints > 0 {
		fmt.Fprintf(out, "  %s mini-win bonus +%d\n", ui.IconSparkle, p.BonusPoints)
	}

	switch {
	case res.StreakReset:
		fmt.Fprintf(out, "  %s streak restarted at %d\n", ui.Warn.Render(ui.IconWarn), res.StreakAfter.CurrentStreak)
	case res.StreakAfter.CurrentStreak != res.StreakBefore.CurrentStreak:
		fmt.Fprintf(out, "  %s streak %d → %d\n", ui.IconHype, res.StreakBefore.CurrentStreak, res.StreakAfter.CurrentStreak)
	}
	if res.Milestone != nil {
		fmt.Fprintf(out, "  %s %s\n", ui.IconTrophy, ui.Gold.Render(res.Milestone.Reward))
	}
	for _, r := range res.QuestRewards {
		fmt.Fprintf(out, "  %s %s\n", ui.IconScroll, ui.Good.Render(r.Message))
	}
	if res.LevelUp {
		fmt.Fprintf(out, "  %s %s %d → %d\n", ui.IconRocket, ui.BadgeLevelUp, res.LevelBefore.Level, res.LevelAfter.Level)
	}
	fmt.Fprintln(out, ui.LabelValue("Hype points", res.HypePoints))
}
