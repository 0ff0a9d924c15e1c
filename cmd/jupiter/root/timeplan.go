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

func newTimePlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time-plan",
		Short: "Plan a period's worth of work",
	}
	cmd.AddCommand(
		newTimePlanAddCmd(),
		newTimePlanArchiveCmd(),
		newTimePlanListCmd(),
		newTimePlanActivityCmd(),
	)
	return cmd
}

func newTimePlanAddCmd() *cobra.Command {
	var period string
	var rightNow string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open the plan for the current bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := schedule.ParsePeriod(period)
			if err != nil {
				return domain.InputValidationError{Field: "period", Msg: period}
			}
			planArgs := engine.CreateTimePlanArgs{Period: p}
			if planArgs.RightNow, err = parseDateFlag(rightNow); err != nil {
				return err
			}
			plan, err := svc.CreateTimePlan(ctx, planArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Time plan %d covers %s\n", plan.Ref, ui.Key.Render(plan.Timeline))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "weekly", "Bucket period (daily|weekly|monthly|quarterly|yearly)")
	cmd.Flags().StringVar(&rightNow, "date", "", "Date inside the bucket (default today)")

	return cmd
}

func newTimePlanArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a time plan and its activities",
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
			_, err = svc.ArchiveTimePlan(ctx, ref)
			return err
		},
	}
	return cmd
}

func newTimePlanListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plans, err := svc.ListTimePlans(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlan, "Time Plans"))
			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "- %d %s %s\n", p.Ref, ui.Key.Render(p.Timeline), ui.Muted.Render(string(p.Period)))
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}

func newTimePlanActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage activities inside a plan",
	}
	cmd.AddCommand(
		newActivityAddCmd(),
		newActivityUpdateCmd(),
		newActivityArchiveCmd(),
		newActivityListCmd(),
	)
	return cmd
}

func newActivityAddCmd() *cobra.Command {
	var kind string
	var feasibility string
	var bigPlan bool

	cmd := &cobra.Command{
		Use:   "add <plan-ref> <target-ref>",
		Short: "Put a task or big plan on a time plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			planRef, err := parseRef(args[0])
			if err != nil {
				return err
			}
			targetRef, err := parseRef(args[1])
			if err != nil {
				return err
			}
			target := domain.ActivityTargetInboxTask
			if bigPlan {
				target = domain.ActivityTargetBigPlan
			}
			_, err = svc.AddTimePlanActivity(ctx, engine.AddTimePlanActivityArgs{
				TimePlanRef: planRef,
				Target:      target,
				TargetRef:   targetRef,
				Kind:        domain.TimePlanActivityKind(kind),
				Feasibility: domain.TimePlanActivityFeasibility(feasibility),
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(domain.TimePlanActivityKindFinish), "finish or make-progress")
	cmd.Flags().StringVarP(&feasibility, "feasibility", "f", string(domain.FeasibilityNiceToHave), "must-do, nice-to-have or not-now")
	cmd.Flags().BoolVar(&bigPlan, "big-plan", false, "Target is a big plan, not an inbox task")

	return cmd
}

func newActivityUpdateCmd() *cobra.Command {
	var kind string
	var feasibility string

	cmd := &cobra.Command{
		Use:   "update <activity-ref>",
		Short: "Change an activity's kind or feasibility",
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
			activityArgs := engine.UpdateTimePlanActivityArgs{Ref: ref}
			if kind != "" {
				k := domain.TimePlanActivityKind(kind)
				activityArgs.Kind = &k
			}
			if feasibility != "" {
				f := domain.TimePlanActivityFeasibility(feasibility)
				activityArgs.Feasibility = &f
			}
			_, err = svc.UpdateTimePlanActivity(ctx, activityArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "finish or make-progress")
	cmd.Flags().StringVarP(&feasibility, "feasibility", "f", "", "must-do, nice-to-have or not-now")

	return cmd
}

func newActivityArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <activity-ref>",
		Short: "Take an activity off its plan",
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
			_, err = svc.ArchiveTimePlanActivity(ctx, ref)
			return err
		},
	}
	return cmd
}

func newActivityListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <plan-ref>",
		Short: "List a plan's activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			planRef, err := parseRef(args[0])
			if err != nil {
				return err
			}
			activities, err := svc.ListTimePlanActivities(ctx, planRef)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlan, "Activities"))
			for _, a := range activities {
				fmt.Fprintf(cmd.OutOrStdout(), "- %d %s %d %s %s\n",
					a.Ref, a.Target, a.TargetRef,
					ui.Key.Render(string(a.Kind)), ui.Muted.Render(string(a.Feasibility)))
			}
			if len(activities) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
