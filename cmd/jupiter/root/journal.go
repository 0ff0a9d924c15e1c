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

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Periodic reflection entries",
	}
	cmd.AddCommand(
		newJournalAddCmd(),
		newJournalReportCmd(),
		newJournalArchiveCmd(),
		newJournalListCmd(),
	)
	return cmd
}

func newJournalAddCmd() *cobra.Command {
	var period string
	var rightNow string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Open the journal for the current bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			journalArgs := engine.CreateJournalArgs{}
			if period != "" {
				p, err := schedule.ParsePeriod(period)
				if err != nil {
					return domain.InputValidationError{Field: "period", Msg: period}
				}
				journalArgs.Period = p
			}
			if journalArgs.RightNow, err = parseDateFlag(rightNow); err != nil {
				return err
			}
			journal, err := svc.CreateJournal(ctx, journalArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Journal %d covers %s\n", journal.Ref, ui.Key.Render(journal.Timeline))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Bucket period (defaults to the workspace journal period)")
	cmd.Flags().StringVar(&rightNow, "date", "", "Date inside the bucket (default today)")

	return cmd
}

func newJournalReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <ref> <text>",
		Short: "Write the journal report",
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
			_, err = svc.UpdateJournalReport(ctx, ref, args[1])
			return err
		},
	}
	return cmd
}

func newJournalArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a journal and its writing task",
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
			_, err = svc.ArchiveJournal(ctx, ref)
			return err
		},
	}
	return cmd
}

func newJournalListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			journals, err := svc.ListJournals(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconJournal, "Journals"))
			for _, j := range journals {
				line := fmt.Sprintf("- %d %s %s", j.Ref, ui.Key.Render(j.Timeline), ui.Muted.Render(string(j.Period)))
				if j.Report != nil {
					line += " " + ui.Good.Render("written")
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(journals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}

func newMemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mem",
		Short: "The working memory scratchpad",
	}
	cmd.AddCommand(newMemShowCmd(), newMemWriteCmd())
	return cmd
}

func newMemShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current scratchpad",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entry, err := svc.CurrentWorkingMem(ctx)
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no working memory yet; write something)"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconGear, "Working Memory "+entry.Timeline))
			if entry.Content == "" {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(empty)"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.Content)
			return nil
		},
	}
}

func newMemWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <content>",
		Short: "Replace the scratchpad content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			_, err = svc.UpdateWorkingMemContent(ctx, args[0])
			return err
		},
	}
}

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Attach notes to entities",
	}
	cmd.AddCommand(newNoteAttachCmd(), newNoteUpdateCmd(), newNoteArchiveCmd())
	return cmd
}

func newNoteAttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach <kind> <ref> <content>",
		Short: "Attach a note to an entity",
		Long:  "Kinds: project, inbox-task, habit, chore, big-plan, metric, person, journal, time-plan.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ref, err := parseRef(args[1])
			if err != nil {
				return err
			}
			_, err = svc.AttachNote(ctx, engine.AttachNoteArgs{
				SourceKind: domain.EntityKind(args[0]),
				SourceRef:  ref,
				Content:    args[2],
			})
			return err
		},
	}
	return cmd
}

func newNoteUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <ref> <content>",
		Short: "Rewrite a note",
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
			_, err = svc.UpdateNoteContent(ctx, ref, args[1])
			return err
		},
	}
	return cmd
}

func newNoteArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a note",
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
			_, err = svc.ArchiveNote(ctx, ref)
			return err
		},
	}
	return cmd
}
