package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work the inbox",
	}
	cmd.AddCommand(
		newTaskAddCmd(),
		newTaskUpdateCmd(),
		newTaskStatusCmd(),
		newTaskMoveCmd(),
		newTaskArchiveCmd(),
		newTaskListCmd(),
	)
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var project string
	var eisen string
	var difficulty string
	var bigPlan string
	var actionable string
	var due string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an inbox task",
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
			projectRef, err := parseRefFlag(project)
			if err != nil {
				return err
			}
			e, err := domain.ParseEisen(eisen)
			if err != nil {
				return err
			}
			d, err := domain.ParseDifficulty(difficulty)
			if err != nil {
				return err
			}
			taskArgs := engine.CreateInboxTaskArgs{Name: name, Eisen: e, Difficulty: d}
			if projectRef != nil {
				taskArgs.ProjectRef = *projectRef
			}
			if taskArgs.BigPlanRef, err = parseRefFlag(bigPlan); err != nil {
				return err
			}
			if taskArgs.ActionableDate, err = parseDateFlag(actionable); err != nil {
				return err
			}
			if taskArgs.DueDate, err = parseDateFlag(due); err != nil {
				return err
			}
			_, err = svc.CreateInboxTask(ctx, taskArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ref (defaults to the workspace default)")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class (regular|important|urgent|important-and-urgent)")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty (easy|medium|hard)")
	cmd.Flags().StringVar(&bigPlan, "big-plan", "", "Owning big plan ref")
	cmd.Flags().StringVar(&actionable, "actionable", "", "Actionable-from date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

func newTaskUpdateCmd() *cobra.Command {
	var name string
	var eisen string
	var difficulty string
	var actionable string
	var due string
	var clearDates bool

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update an inbox task",
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
			taskArgs := engine.UpdateInboxTaskArgs{Ref: ref, ClearDates: clearDates}
			if taskArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if eisen != "" {
				e, err := domain.ParseEisen(eisen)
				if err != nil {
					return err
				}
				taskArgs.Eisen = &e
			}
			if difficulty != "" {
				d, err := domain.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				taskArgs.Difficulty = &d
			}
			if taskArgs.ActionableDate, err = parseDateFlag(actionable); err != nil {
				return err
			}
			if taskArgs.DueDate, err = parseDateFlag(due); err != nil {
				return err
			}
			_, err = svc.UpdateInboxTask(ctx, taskArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "New Eisenhower class")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "New difficulty")
	cmd.Flags().StringVar(&actionable, "actionable", "", "New actionable-from date")
	cmd.Flags().StringVar(&due, "due", "", "New due date")
	cmd.Flags().BoolVar(&clearDates, "clear-dates", false, "Drop actionable and due dates")

	return cmd
}

func newTaskStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <ref> <status>",
		Short: "Move a task through its lifecycle",
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
			status, err := domain.ParseInboxTaskStatus(args[1])
			if err != nil {
				return err
			}
			task, err := svc.ChangeInboxTaskStatus(ctx, ref, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s is %s\n", task.Ref, task.Name, ui.StatusText(string(task.Status)))
			return nil
		},
	}
	return cmd
}

func newTaskMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <ref> <project-ref>",
		Short: "Move a task to another project",
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
			projectRef, err := parseRef(args[1])
			if err != nil {
				return err
			}
			_, err = svc.MoveInboxTask(ctx, ref, projectRef)
			return err
		},
	}
	return cmd
}

func newTaskArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive an inbox task",
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
			_, err = svc.ArchiveInboxTask(ctx, ref)
			return err
		},
	}
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inbox tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := svc.ListInboxTasks(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTask, "Inbox"))
			shown := 0
			for _, t := range tasks {
				if !all && t.Status.IsCompleted() {
					continue
				}
				shown++
				line := fmt.Sprintf("- %s %d %s %s", ui.SourceIcon(string(t.Source)), t.Ref, t.Name, ui.StatusText(string(t.Status)))
				if t.DueDate != nil {
					line += ui.Muted.Render(" due " + t.DueDate.String())
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(nothing here)"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include finished tasks")

	return cmd
}
