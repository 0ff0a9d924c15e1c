package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "People you want to stay in touch with",
	}
	cmd.AddCommand(
		newPersonAddCmd(),
		newPersonUpdateCmd(),
		newPersonArchiveCmd(),
		newPersonListCmd(),
	)
	return cmd
}

func newPersonAddCmd() *cobra.Command {
	var relationship string
	var catchUp string
	var eisen string
	var difficulty string
	var birthday string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person",
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
			rel, err := domain.ParseRelationship(relationship)
			if err != nil {
				return err
			}
			personArgs := engine.CreatePersonArgs{Name: name, Relationship: rel}
			if catchUp != "" {
				genParams, err := parseGenParams(catchUp, eisen, difficulty, "")
				if err != nil {
					return err
				}
				personArgs.CatchUpParams = &genParams
			}
			if birthday != "" {
				b, err := domain.ParseBirthday(birthday)
				if err != nil {
					return err
				}
				personArgs.Birthday = &b
			}
			_, err = svc.CreatePerson(ctx, personArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&relationship, "relationship", "r", "other", "Relationship (family|friend|acquaintance|colleague|other)")
	cmd.Flags().StringVar(&catchUp, "catch-up", "", "Catch-up period; set to get reminder tasks")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of catch-up tasks")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of catch-up tasks")
	cmd.Flags().StringVar(&birthday, "birthday", "", "Birthday, e.g. \"14 Mar\"")

	return cmd
}

func newPersonUpdateCmd() *cobra.Command {
	var name string
	var relationship string
	var catchUp string
	var eisen string
	var difficulty string
	var birthday string
	var clearCatchUp bool
	var clearBirthday bool

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update a person",
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
			personArgs := engine.UpdatePersonArgs{
				Ref:           ref,
				ClearCatchUp:  clearCatchUp,
				ClearBirthday: clearBirthday,
			}
			if personArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if relationship != "" {
				rel, err := domain.ParseRelationship(relationship)
				if err != nil {
					return err
				}
				personArgs.Relationship = &rel
			}
			if catchUp != "" {
				genParams, err := parseGenParams(catchUp, eisen, difficulty, "")
				if err != nil {
					return err
				}
				personArgs.CatchUpParams = &genParams
			}
			if birthday != "" {
				b, err := domain.ParseBirthday(birthday)
				if err != nil {
					return err
				}
				personArgs.Birthday = &b
			}
			_, err = svc.UpdatePerson(ctx, personArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&relationship, "relationship", "r", "", "New relationship")
	cmd.Flags().StringVar(&catchUp, "catch-up", "", "New catch-up period")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of catch-up tasks")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of catch-up tasks")
	cmd.Flags().StringVar(&birthday, "birthday", "", "New birthday")
	cmd.Flags().BoolVar(&clearCatchUp, "no-catch-up", false, "Stop catch-up reminders")
	cmd.Flags().BoolVar(&clearBirthday, "no-birthday", false, "Forget the birthday")

	return cmd
}

func newPersonArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a person and their open reminder tasks",
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
			_, err = svc.ArchivePerson(ctx, ref)
			return err
		},
	}
	return cmd
}

func newPersonListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			persons, err := svc.ListPersons(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPerson, "Persons"))
			for _, p := range persons {
				line := fmt.Sprintf("- %d %s %s", p.Ref, p.Name, ui.Muted.Render(string(p.Relationship)))
				if p.CatchUpParams != nil {
					line += ui.Muted.Render(" catch-up " + string(p.CatchUpParams.Period))
				}
				if p.Birthday != nil {
					line += ui.Muted.Render(" birthday " + p.Birthday.String())
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(persons) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
