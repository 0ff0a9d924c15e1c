package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newBigPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "big-plan",
		Short: "Multi-week initiatives",
	}
	cmd.AddCommand(
		newBigPlanAddCmd(),
		newBigPlanUpdateCmd(),
		newBigPlanStatusCmd(),
		newBigPlanArchiveCmd(),
		newBigPlanListCmd(),
	)
	return cmd
}

func newBigPlanAddCmd() *cobra.Command {
	var project string
	var actionable string
	var due string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a big plan",
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
			planArgs := engine.CreateBigPlanArgs{Name: name}
			projectRef, err := parseRefFlag(project)
			if err != nil {
				return err
			}
			if projectRef != nil {
				planArgs.ProjectRef = *projectRef
			}
			if planArgs.ActionableDate, err = parseDateFlag(actionable); err != nil {
				return err
			}
			if planArgs.DueDate, err = parseDateFlag(due); err != nil {
				return err
			}
			_, err = svc.CreateBigPlan(ctx, planArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ref (defaults to the workspace default)")
	cmd.Flags().StringVar(&actionable, "actionable", "", "Actionable-from date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

func newBigPlanUpdateCmd() *cobra.Command {
	var name string
	var project string
	var actionable string
	var due string

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update a big plan",
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
			planArgs := engine.UpdateBigPlanArgs{Ref: ref}
			if planArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if planArgs.ProjectRef, err = parseRefFlag(project); err != nil {
				return err
			}
			if planArgs.ActionableDate, err = parseDateFlag(actionable); err != nil {
				return err
			}
			if planArgs.DueDate, err = parseDateFlag(due); err != nil {
				return err
			}
			_, err = svc.UpdateBigPlan(ctx, planArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&project, "project", "p", "", "New project ref")
	cmd.Flags().StringVar(&actionable, "actionable", "", "New actionable-from date")
	cmd.Flags().StringVar(&due, "due", "", "New due date")

	return cmd
}

func newBigPlanStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <ref> <status>",
		Short: "Move a big plan through its lifecycle",
		Long:  "Statuses: not-started, in-progress, blocked, done, not-done. Done and not-done feed the score.",
		Args:  cobra.ExactArgs(2),
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
			status, err := domain.ParseBigPlanStatus(args[1])
			if err != nil {
				return err
			}
			plan, err := svc.ChangeBigPlanStatus(ctx, ref, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s is %s\n", plan.Ref, plan.Name, ui.StatusText(string(plan.Status)))
			return nil
		},
	}
	return cmd
}

func newBigPlanArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a big plan and its open tasks",
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
			_, err = svc.ArchiveBigPlan(ctx, ref)
			return err
		},
	}
	return cmd
}

func newBigPlanListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List big plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plans, err := svc.ListBigPlans(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlan, "Big Plans"))
			for _, plan := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "- %d %s %s %s\n",
					plan.Ref, plan.Name, ui.StatusText(string(plan.Status)),
					ui.Muted.Render("due "+formatDate(plan.DueDate)))
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
