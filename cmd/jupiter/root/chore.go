package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newChoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chore",
		Short: "Recurring things you have to do",
	}
	cmd.AddCommand(
		newChoreAddCmd(),
		newChoreUpdateCmd(),
		newChoreSuspendCmd(),
		newChoreArchiveCmd(),
		newChoreListCmd(),
	)
	return cmd
}

func newChoreAddCmd() *cobra.Command {
	var project string
	var period string
	var eisen string
	var difficulty string
	var skipRule string
	var start string
	var end string
	var mustDo bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a chore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			name, err := domain.NewEntityName(args[0])
			if err != nil {
				return err
			}
			genParams, err := parseGenParams(period, eisen, difficulty, skipRule)
			if err != nil {
				return err
			}
			choreArgs := engine.CreateChoreArgs{Name: name, GenParams: genParams, MustDo: mustDo}
			projectRef, err := parseRefFlag(project)
			if err != nil {
				return err
			}
			if projectRef != nil {
				choreArgs.ProjectRef = *projectRef
			}
			if choreArgs.StartDate, err = parseDateFlag(start); err != nil {
				return err
			}
			if choreArgs.EndDate, err = parseDateFlag(end); err != nil {
				return err
			}
			_, err = svc.CreateChore(ctx, choreArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ref (defaults to the workspace default)")
	cmd.Flags().StringVar(&period, "period", "weekly", "Recurrence period (daily|weekly|monthly|quarterly|yearly)")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of generated tasks")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of generated tasks")
	cmd.Flags().StringVar(&skipRule, "skip-rule", "", "Skip rule (even|odd|every-n/N|day list)")
	cmd.Flags().StringVar(&start, "start", "", "First generation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last generation date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&mustDo, "must-do", false, "Generate even during vacations")

	return cmd
}

func newChoreUpdateCmd() *cobra.Command {
	var name string
	var project string
	var period string
	var eisen string
	var difficulty string
	var skipRule string
	var start string
	var end string
	var mustDo bool
	var optional bool

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update a chore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			choreArgs := engine.UpdateChoreArgs{Ref: ref}
			if choreArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if choreArgs.ProjectRef, err = parseRefFlag(project); err != nil {
				return err
			}
			if period != "" {
				genParams, err := parseGenParams(period, eisen, difficulty, skipRule)
				if err != nil {
					return err
				}
				choreArgs.GenParams = &genParams
			}
			if choreArgs.StartDate, err = parseDateFlag(start); err != nil {
				return err
			}
			if choreArgs.EndDate, err = parseDateFlag(end); err != nil {
				return err
			}
			if mustDo {
				v := true
				choreArgs.MustDo = &v
			} else if optional {
				v := false
				choreArgs.MustDo = &v
			}
			_, err = svc.UpdateChore(ctx, choreArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&project, "project", "p", "", "New project ref")
	cmd.Flags().StringVar(&period, "period", "", "New recurrence period (replaces all generation params)")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of generated tasks")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of generated tasks")
	cmd.Flags().StringVar(&skipRule, "skip-rule", "", "Skip rule")
	cmd.Flags().StringVar(&start, "start", "", "New first generation date")
	cmd.Flags().StringVar(&end, "end", "", "New last generation date")
	cmd.Flags().BoolVar(&mustDo, "must-do", false, "Generate even during vacations")
	cmd.Flags().BoolVar(&optional, "optional", false, "Skip during vacations again")

	return cmd
}

func newChoreSuspendCmd() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "suspend <ref>",
		Short: "Pause (or resume) task generation for a chore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			_, err = svc.SuspendChore(ctx, ref, !resume)
			return err
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Resume instead of suspend")

	return cmd
}

func newChoreArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a chore and its open generated tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ref, err := parseRef(args[0])
			if err != nil {
				return err
			}
			_, err = svc.ArchiveChore(ctx, ref)
			return err
		},
	}
	return cmd
}

func newChoreListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chores",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			chores, err := svc.ListChores(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconChore, "Chores"))
			for _, ch := range chores {
				line := fmt.Sprintf("- %d %s %s", ch.Ref, ch.Name, ui.Muted.Render(string(ch.GenParams.Period)))
				if ch.MustDo {
					line += " " + ui.Key.Render("must-do")
				}
				if ch.Suspended {
					line += " " + ui.Warn.Render("suspended")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(chores) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
