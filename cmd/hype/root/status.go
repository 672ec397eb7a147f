package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"hypeos/internal/ui"
)

func newStatusCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show points, level, streak and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := s.svc.Dashboard(ctx, s.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "HypeOS Status"))
			fmt.Fprintln(out, ui.LabelValue("Profile", d.UserID))
			fmt.Fprintln(out, ui.LabelValue("Hype points", d.HypePoints))
			if d.Level.MaxLevel {
				fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d %s", d.Level.Level, ui.Gold.Render("(max)"))))
			} else {
				fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d %s %d to go", d.Level.Level, ui.ProgressBar(d.Level.Progress, 20), d.Level.PointsToNext)))
			}
			fmt.Fprintln(out, ui.LabelValue("Today", fmt.Sprintf("%d points from %d task(s), %d pending", d.TodayPoints, d.CompletedToday, d.PendingTasks)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconHype+" Streak"))
			st := d.StreakStatus
			fmt.Fprintf(out, "- %s %d day(s) %s\n", ui.Key.Render("Current:"), d.Streak.CurrentStreak, ui.Muted.Render(fmt.Sprintf("(longest %d, %d active days)", d.Streak.LongestStreak, d.Streak.TotalDaysActive)))
			fmt.Fprintf(out, "- %s x%.1f\n", ui.Key.Render("Multiplier:"), st.Multiplier)
			switch {
			case !st.IsActive:
				fmt.Fprintln(out, "- "+ui.Bad.Render("Inactive.")+" Complete a task to start a new streak.")
			case st.CanMaintain:
				fmt.Fprintln(out, "- "+ui.Warn.Render("Complete a task today to keep it alive."))
			default:
				fmt.Fprintln(out, "- "+ui.Good.Render("Safe for today."))
			}
			if st.NextMilestone != nil {
				fmt.Fprintf(out, "- %s %s in %d day(s)\n", ui.Key.Render("Next:"), st.NextMilestone.Reward, st.DaysToNextMilestone)
			}
			fmt.Fprintln(out, "")

			badges, err := s.svc.Achievements(ctx, s.userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Badges (%d/%d)", ui.IconTrophy, d.BadgesEarned, d.BadgesTotal)))
			for _, b := range badges {
				if b.Earned {
					fmt.Fprintf(out, "- %s %s %s\n", b.Icon, ui.Good.Render(b.Name), ui.Muted.Render(b.Description))
				} else {
					fmt.Fprintf(out, "- %s %s\n", ui.Dim.Render("🔒 "+b.Name), ui.Muted.Render(b.Description))
				}
			}
			return nil
		},
	}

	return cmd
}
