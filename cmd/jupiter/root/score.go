package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newScoreCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Show gamification scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			overview, err := svc.GetScoreOverview(ctx, recent)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTrophy, "Scores"))
			printStats(cmd, "Today", overview.Daily)
			printStats(cmd, "This week", overview.Weekly)
			printStats(cmd, "This month", overview.Monthly)
			printStats(cmd, "This quarter", overview.Quarterly)
			printStats(cmd, "This year", overview.Yearly)
			printStats(cmd, "Lifetime", overview.Lifetime)

			if len(overview.Recent) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "")
				fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("Recent"))
				for _, e := range overview.Recent {
					verdict := ui.Good.Render(fmt.Sprintf("+%d", e.Score))
					if e.Score < 0 {
						verdict = ui.Bad.Render(fmt.Sprintf("%d", e.Score))
					}
					fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %d %s\n", verdict, e.Source, e.TaskRef, ui.Muted.Render(string(e.Difficulty)))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&recent, "recent", "n", 5, "How many recent score events to show")

	return cmd
}

func printStats(cmd *cobra.Command, label string, stats domain.ScoreStats) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n",
		ui.Key.Render(label+":"), stats.TotalScore,
		ui.Muted.Render(fmt.Sprintf("(%d tasks, %d big plans)", stats.InboxTaskCnt, stats.BigPlanCnt)))
}
