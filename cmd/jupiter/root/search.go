package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find entities by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := svc.Search(ctx, args[0], limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSearch, "Results"))
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %d %s\n", r.Kind, r.Ref, r.Name)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no matches)"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum results")

	return cmd
}
