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

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Inspect and change the workspace",
	}
	cmd.AddCommand(newWorkspaceShowCmd(), newWorkspaceUpdateCmd(), newWorkspaceFeatureCmd())
	return cmd
}

func newWorkspaceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show workspace settings and enabled features",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ws, err := svc.GetWorkspace(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRocket, "Workspace"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Name", ws.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Default project", ws.DefaultProjectRef))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Working mem period", ws.WorkingMemPeriod))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Journal period", ws.JournalPeriod))
			fmt.Fprintln(cmd.OutOrStdout(), "")
			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("Features"))
			for _, f := range ws.FeatureFlags.Enabled() {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", ui.Good.Render(string(f)))
			}
			return nil
		},
	}
}

func newWorkspaceUpdateCmd() *cobra.Command {
	var name string
	var defaultProject string
	var memPeriod string
	var journalPeriod string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change workspace settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			wsArgs := engine.UpdateWorkspaceArgs{}
			if wsArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if wsArgs.DefaultProjectRef, err = parseRefFlag(defaultProject); err != nil {
				return err
			}
			if memPeriod != "" {
				p, err := schedule.ParsePeriod(memPeriod)
				if err != nil {
					return domain.InputValidationError{Field: "working-mem-period", Msg: memPeriod}
				}
				wsArgs.WorkingMemPeriod = &p
			}
			if journalPeriod != "" {
				p, err := schedule.ParsePeriod(journalPeriod)
				if err != nil {
					return domain.InputValidationError{Field: "journal-period", Msg: journalPeriod}
				}
				wsArgs.JournalPeriod = &p
			}

			_, err = svc.UpdateWorkspace(ctx, wsArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New workspace name")
	cmd.Flags().StringVar(&defaultProject, "default-project", "", "Default project ref")
	cmd.Flags().StringVar(&memPeriod, "working-mem-period", "", "Working memory period (daily|weekly)")
	cmd.Flags().StringVar(&journalPeriod, "journal-period", "", "Journal period (daily|weekly|monthly|quarterly|yearly)")

	return cmd
}

func newWorkspaceFeatureCmd() *cobra.Command {
	var enable bool
	var disable bool

	cmd := &cobra.Command{
		Use:   "feature <name>",
		Short: "Enable or disable a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable == disable {
				return domain.InputValidationError{Field: "feature", Msg: "pass exactly one of --on or --off"}
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			feature := domain.Feature(args[0])
			ws, err := svc.SetFeature(ctx, feature, enable)
			if err != nil {
				return err
			}
			state := ui.Bad.Render("off")
			if ws.FeatureFlags.IsEnabled(feature) {
				state = ui.Good.Render("on")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", feature, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&enable, "on", false, "Enable the feature")
	cmd.Flags().BoolVar(&disable, "off", false, "Disable the feature")

	return cmd
}

func newUserCmd() *cobra.Command {
	var name string
	var timezone string

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show or change the user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if name != "" || timezone != "" {
				userArgs := engine.UpdateUserArgs{}
				if userArgs.Name, err = parseNameFlag(name); err != nil {
					return err
				}
				if timezone != "" {
					tz, err := domain.NewTimezone(timezone)
					if err != nil {
						return err
					}
					userArgs.Timezone = &tz
				}
				if _, err := svc.UpdateUser(ctx, userArgs); err != nil {
					return err
				}
			}

			user, err := svc.GetUser(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPerson, "User"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Name", user.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Email", user.Email))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Timezone", user.Timezone))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&timezone, "timezone", "", "New IANA timezone")

	return cmd
}
