package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/ui"
)

func newAddCmd(opts *options) *cobra.Command {
	var in engine.CreateTaskInput

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			in.Title = args[0]
			if in.GoalID != "" {
				g, err := resolveGoalID(ctx, s, in.GoalID)
				if err != nil {
					return err
				}
				in.GoalID = g
			}
			t, err := s.svc.CreateTask(ctx, s.userID, in)
			if err != nil {
				return err
			}

			preview, err := s.svc.PreviewPoints(ctx, s.userID, engine.PreviewInput{
				ImpactTier: string(t.ImpactTier),
				Category:   t.Category,
				MiniWin:    t.MiniWin,
			})
			worth := ui.Gold.Render(fmt.Sprintf("worth ~%d points today", preview.TotalPoints))
			if errors.Is(err, hypeos.ErrClockSkew) {
				worth = ui.Warn.Render(err.Error())
			} else if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Added %s %s\n", ui.IconPlus, ui.Key.Render(shortID(t.ID)), t.Title)
			fmt.Fprintf(out, "  %s %s  %s %s  %s\n",
				ui.Muted.Render("impact"), ui.ImpactText(t.ImpactTier),
				ui.Muted.Render("category"), t.Category, worth)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.ImpactTier, "impact", "i", "medium", "Impact tier (high|medium|low)")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Category (sales, marketing, content, admin, learning, networking, ...)")
	cmd.Flags().BoolVarP(&in.MiniWin, "mini", "m", false, "Mark as a mini-win (+20% bonus)")
	cmd.Flags().StringVarP(&in.GoalID, "goal", "g", "", "Attach to a goal (id or prefix)")

	return cmd
}
