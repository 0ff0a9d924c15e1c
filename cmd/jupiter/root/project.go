package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Organize work into a project tree",
	}
	cmd.AddCommand(
		newProjectAddCmd(),
		newProjectRenameCmd(),
		newProjectMoveCmd(),
		newProjectArchiveCmd(),
		newProjectListCmd(),
	)
	return cmd
}

func newProjectAddCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project under a parent",
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
			parentRef, err := parseRef(parent)
			if err != nil {
				return err
			}
			_, err = svc.CreateProject(ctx, engine.CreateProjectArgs{Name: name, ParentRef: parentRef})
			return err
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent project ref (required)")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}

func newProjectRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <ref> <name>",
		Short: "Rename a project",
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
			name, err := domain.NewEntityName(args[1])
			if err != nil {
				return err
			}
			_, err = svc.UpdateProject(ctx, ref, name)
			return err
		},
	}
	return cmd
}

func newProjectMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <ref> <new-parent-ref>",
		Short: "Reparent a project",
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
			parentRef, err := parseRef(args[1])
			if err != nil {
				return err
			}
			_, err = svc.MoveProject(ctx, ref, parentRef)
			return err
		},
	}
	return cmd
}

func newProjectArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a project and everything in it",
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
			archived, err := svc.ArchiveProject(ctx, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d entities.\n", len(archived))
			return nil
		},
	}
	return cmd
}

func newProjectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects as a tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			projects, err := svc.ListProjects(ctx)
			if err != nil {
				return err
			}

			children := map[domain.Ref][]domain.Project{}
			var roots []domain.Project
			for _, p := range projects {
				if p.ParentProjectRef == nil {
					roots = append(roots, p)
					continue
				}
				children[*p.ParentProjectRef] = append(children[*p.ParentProjectRef], p)
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRocket, "Projects"))
			var walk func(p domain.Project, depth int)
			walk = func(p domain.Project, depth int) {
				indent := ""
				for i := 0; i < depth; i++ {
					indent += "  "
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s- %d %s\n", indent, p.Ref, p.Name)
				for _, kid := range children[p.Ref] {
					walk(kid, depth+1)
				}
			}
			for _, p := range roots {
				walk(p, 0)
			}
			return nil
		},
	}
	return cmd
}
