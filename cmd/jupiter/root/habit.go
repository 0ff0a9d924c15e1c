package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Recurring things you want to do",
	}
	cmd.AddCommand(
		newHabitAddCmd(),
		newHabitUpdateCmd(),
		newHabitSuspendCmd(),
		newHabitArchiveCmd(),
		newHabitListCmd(),
	)
	return cmd
}

func newHabitAddCmd() *cobra.Command {
	var project string
	var period string
	var eisen string
	var difficulty string
	var skipRule string
	var start string
	var end string
	var repeats int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
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
			habitArgs := engine.CreateHabitArgs{Name: name, GenParams: genParams}
			projectRef, err := parseRefFlag(project)
			if err != nil {
				return err
			}
			if projectRef != nil {
				habitArgs.ProjectRef = *projectRef
			}
			if habitArgs.StartDate, err = parseDateFlag(start); err != nil {
				return err
			}
			if habitArgs.EndDate, err = parseDateFlag(end); err != nil {
				return err
			}
			if repeats > 0 {
				habitArgs.RepeatsInPeriodCount = &repeats
			}
			_, err = svc.CreateHabit(ctx, habitArgs)
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
	cmd.Flags().IntVar(&repeats, "repeats", 0, "Tasks per period bucket")

	return cmd
}

func newHabitUpdateCmd() *cobra.Command {
	var name string
	var project string
	var period string
	var eisen string
	var difficulty string
	var skipRule string
	var start string
	var end string
	var repeats int

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update a habit",
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
			habitArgs := engine.UpdateHabitArgs{Ref: ref}
			if habitArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if habitArgs.ProjectRef, err = parseRefFlag(project); err != nil {
				return err
			}
			if period != "" {
				genParams, err := parseGenParams(period, eisen, difficulty, skipRule)
				if err != nil {
					return err
				}
				habitArgs.GenParams = &genParams
			}
			if habitArgs.StartDate, err = parseDateFlag(start); err != nil {
				return err
			}
			if habitArgs.EndDate, err = parseDateFlag(end); err != nil {
				return err
			}
			if repeats > 0 {
				habitArgs.RepeatsInPeriodCount = &repeats
			}
			_, err = svc.UpdateHabit(ctx, habitArgs)
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
	cmd.Flags().IntVar(&repeats, "repeats", 0, "Tasks per period bucket")

	return cmd
}

func newHabitSuspendCmd() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "suspend <ref>",
		Short: "Pause (or resume) task generation for a habit",
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
			_, err = svc.SuspendHabit(ctx, ref, !resume)
			return err
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Resume instead of suspend")

	return cmd
}

func newHabitArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a habit and its open generated tasks",
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
			_, err = svc.ArchiveHabit(ctx, ref)
			return err
		},
	}
	return cmd
}

func newHabitListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			habits, err := svc.ListHabits(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconHabit, "Habits"))
			for _, h := range habits {
				line := fmt.Sprintf("- %d %s %s", h.Ref, h.Name, ui.Muted.Render(string(h.GenParams.Period)))
				if h.Suspended {
					line += " " + ui.Warn.Render("suspended")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(habits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
