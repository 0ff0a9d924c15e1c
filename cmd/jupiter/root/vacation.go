package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newVacationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vacation",
		Short: "Date ranges that pause habit and chore generation",
	}
	cmd.AddCommand(
		newVacationAddCmd(),
		newVacationUpdateCmd(),
		newVacationArchiveCmd(),
		newVacationListCmd(),
	)
	return cmd
}

func newVacationAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> <start> <end>",
		Short: "Add a vacation",
		Args:  cobra.ExactArgs(3),
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
			start, err := schedule.ParseADate(args[1])
			if err != nil {
				return domain.InputValidationError{Field: "start", Msg: args[1]}
			}
			end, err := schedule.ParseADate(args[2])
			if err != nil {
				return domain.InputValidationError{Field: "end", Msg: args[2]}
			}
			_, err = svc.CreateVacation(ctx, engine.CreateVacationArgs{
				Name:      name,
				StartDate: start,
				EndDate:   end,
			})
			return err
		},
	}
	return cmd
}

func newVacationUpdateCmd() *cobra.Command {
	var name string
	var start string
	var end string

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update a vacation",
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
			vacationArgs := engine.UpdateVacationArgs{Ref: ref}
			if vacationArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if vacationArgs.StartDate, err = parseDateFlag(start); err != nil {
				return err
			}
			if vacationArgs.EndDate, err = parseDateFlag(end); err != nil {
				return err
			}
			_, err = svc.UpdateVacation(ctx, vacationArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&start, "start", "", "New start date")
	cmd.Flags().StringVar(&end, "end", "", "New end date")

	return cmd
}

func newVacationArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a vacation",
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
			_, err = svc.ArchiveVacation(ctx, ref)
			return err
		},
	}
	return cmd
}

func newVacationListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vacations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			vacations, err := svc.ListVacations(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconBeach, "Vacations"))
			for _, v := range vacations {
				fmt.Fprintf(cmd.OutOrStdout(), "- %d %s %s\n", v.Ref, v.Name,
					ui.Muted.Render(v.StartDate.String()+" to "+v.EndDate.String()))
			}
			if len(vacations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
