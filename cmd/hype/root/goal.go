package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hypeos/internal/engine"
	"hypeos/internal/hypeos"
	"hypeos/internal/ui"
)

func newGoalCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals that tasks roll up to",
	}
	cmd.AddCommand(newGoalAddCmd(opts), newGoalListCmd(opts), newGoalDoneCmd(opts), newGoalRemoveCmd(opts))
	return cmd
}

func newGoalAddCmd(opts *options) *cobra.Command {
	var in engine.CreateGoalInput
	var target string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
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
			if target != "" {
				d, err := time.ParseInLocation(hypeos.DateLayout, target, s.svc.Location())
				if err != nil {
					return fmt.Errorf("target must look like %s", hypeos.DateLayout)
				}
				in.TargetDate = &d
			}
			g, err := s.svc.CreateGoal(ctx, s.userID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Goal %s %s\n", ui.IconTarget, ui.Key.Render(shortID(g.ID)), g.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "Category")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target date (YYYY-MM-DD)")
	return cmd
}

func newGoalListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			goals, err := s.svc.ListGoals(ctx, s.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(goals) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No goals."))
				return nil
			}
			for _, g := range goals {
				mark := ui.IconTarget
				if g.Completed {
					mark = ui.IconDone
				}
				line := fmt.Sprintf("%s %s %s", mark, ui.Key.Render(shortID(g.ID)), g.Title)
				if g.Category != "" {
					line += " " + ui.Muted.Render(g.Category)
				}
				if g.TargetDate != nil {
					line += " " + ui.Muted.Render("by "+hypeos.DateKey(g.TargetDate.In(s.svc.Location())))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newGoalDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a goal achieved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveGoalID(ctx, s, args[0])
			if err != nil {
				return err
			}
			done := true
			g, err := s.svc.UpdateGoal(ctx, s.userID, id, engine.UpdateGoalInput{Completed: &done})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Goal achieved: %s\n", ui.IconTrophy, g.Title)
			return nil
		},
	}
}

func newGoalRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal; its tasks are kept and detached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveGoalID(ctx, s, args[0])
			if err != nil {
				return err
			}
			if err := s.svc.DeleteGoal(ctx, s.userID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Deleted "+shortID(id)))
			return nil
		},
	}
}
