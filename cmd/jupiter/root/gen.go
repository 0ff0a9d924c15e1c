package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newGenCmd() *cobra.Command {
	var (
		today             string
		targets           []string
		periods           []string
		refs              []int64
		evenIfNotModified bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate inbox tasks from habits, chores and the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			genArgs := engine.GenArgs{
				Targets:           targets,
				EvenIfNotModified: evenIfNotModified,
			}
			if genArgs.Today, err = parseDateFlag(today); err != nil {
				return err
			}
			for _, raw := range periods {
				p, err := schedule.ParsePeriod(raw)
				if err != nil {
					return err
				}
				genArgs.Periods = append(genArgs.Periods, p)
			}
			for _, ref := range refs {
				genArgs.SourceRefs = append(genArgs.SourceRefs, domain.Ref(ref))
			}
			res, err := svc.Generate(ctx, genArgs)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRocket, "Generation Run"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Targets", strings.Join(res.Targets, ", ")))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Created", len(res.Created)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Updated", len(res.Updated)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Archived", len(res.Archived)))
			for _, msg := range res.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" "+msg))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Run as if today were this date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&targets, "target", nil,
		"Only generate these sources ("+strings.Join(engine.GenTargets, ", ")+")")
	cmd.Flags().StringSliceVar(&periods, "period", nil, "Only generate sources recurring on these periods")
	cmd.Flags().Int64SliceVar(&refs, "ref", nil, "Only generate from these source entity ids")
	cmd.Flags().BoolVar(&evenIfNotModified, "even-if-not-modified", false,
		"Revisit past buckets of sources unchanged since the last run")

	cmd.AddCommand(newGenHistoryCmd())

	return cmd
}

func newGenHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := svc.GenHistory(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRocket, "Generation History"))
			for _, e := range entries {
				line := fmt.Sprintf("- %s via %s: +%d ~%d -%d", e.Today, e.Source, e.CreatedCnt, e.UpdatedCnt, e.ArchivedCnt)
				if len(e.Errors) > 0 {
					line += " " + ui.Bad.Render(fmt.Sprintf("%d errors", len(e.Errors)))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no runs yet)"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "How many runs to show")

	return cmd
}
