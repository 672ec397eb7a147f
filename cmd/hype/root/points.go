package root

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"hypeos/internal/hypeos"
	"hypeos/internal/ui"
)

func newPointsCmd(opts *options) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "points",
		Short: "Show points for a day and the trailing week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, cleanup, err := openSession(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			day := s.svc.Now()
			if date != "" {
				day, err = time.ParseInLocation(hypeos.DateLayout, date, s.svc.Location())
				if err != nil {
					return fmt.Errorf("date must look like %s", hypeos.DateLayout)
				}
			}

			br, err := s.svc.Breakdown(ctx, s.userID, day)
			if err != nil {
				return err
			}
			week, err := s.svc.WeeklyPoints(ctx, s.userID, day)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "Points "+hypeos.DateKey(day)))
			fmt.Fprintln(out, ui.LabelValue("Total", br.Total))
			fmt.Fprintln(out, ui.LabelValue("Streak bonus", br.StreakBonus))
			for _, tier := range []hypeos.ImpactTier{hypeos.ImpactHigh, hypeos.ImpactMedium, hypeos.ImpactLow} {
				if n := br.ByImpact[tier]; n > 0 {
					fmt.Fprintf(out, "- %s %d\n", ui.ImpactText(tier), n)
				}
			}
			cats := make([]string, 0, len(br.ByCategory))
			for c := range br.ByCategory {
				cats = append(cats, c)
			}
			sort.Strings(cats)
			for _, c := range cats {
				fmt.Fprintf(out, "- %s %d\n", ui.Muted.Render(c), br.ByCategory[c])
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Last 7 days"))
			start := day.AddDate(0, 0, -(len(week.Daily) - 1))
			for i, n := range week.Daily {
				fmt.Fprintf(out, "- %s %d\n", ui.Muted.Render(hypeos.DateKey(start.AddDate(0, 0, i))), n)
			}
			fmt.Fprintln(out, ui.LabelValue("Week total", week.Total))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to report (YYYY-MM-DD, default today)")
	return cmd
}
