package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hypeos/internal/storage"
	"hypeos/internal/ui"
)

func newListCmd(opts *options) *cobra.Command {
	var all, done bool
	var category, goal string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (pending by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			var f storage.TaskFilter
			if !all {
				f.Completed = &done
			}
			f.Category = strings.ToLower(strings.TrimSpace(category))
			if goal != "" {
				if f.GoalID, err = resolveGoalID(ctx, s, goal); err != nil {
					return err
				}
			}

			tasks, err := s.svc.ListTasks(ctx, s.userID, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No tasks."))
				return nil
			}
			for _, t := range tasks {
				line := fmt.Sprintf("%s %s %s [%s] %s", ui.TaskIcon(t), ui.Key.Render(shortID(t.ID)), t.Title,
					ui.ImpactText(t.ImpactTier), ui.Muted.Render(t.Category))
				if t.Completed {
					line += " " + ui.Gold.Render(fmt.Sprintf("+%d", t.PointsAwarded))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	cmd.Flags().BoolVarP(&done, "done", "d", false, "Only completed tasks")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Filter by goal (id or prefix)")

	return cmd
}
