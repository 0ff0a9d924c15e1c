package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newInitCmd() *cobra.Command {
	var email string
	var userName string
	var timezone string
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the user, workspace and default project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			emailAddr, err := domain.NewEmailAddress(email)
			if err != nil {
				return err
			}
			uName, err := domain.NewEntityName(userName)
			if err != nil {
				return err
			}
			wsName, err := domain.NewEntityName(workspaceName)
			if err != nil {
				return err
			}
			tz, err := domain.NewTimezone(timezone)
			if err != nil {
				return err
			}

			res, err := svc.Init(ctx, engine.InitArgs{
				UserEmail:     emailAddr,
				UserName:      uName,
				Timezone:      tz,
				WorkspaceName: wsName,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRocket, "Welcome to Jupiter"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("User", fmt.Sprintf("%s <%s>", res.User.Name, res.User.Email)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Workspace", res.Workspace.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Default project", fmt.Sprintf("%s (%d)", res.Default.Name, res.Default.Ref)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&userName, "name", "", "User display name (required)")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone")
	cmd.Flags().StringVar(&workspaceName, "workspace", "Plans", "Workspace name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
