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

func newStreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Calendars of scheduled events",
	}
	cmd.AddCommand(
		newStreamAddCmd(),
		newStreamRenameCmd(),
		newStreamArchiveCmd(),
		newStreamListCmd(),
		newStreamEventCmd(),
	)
	return cmd
}

func newStreamAddCmd() *cobra.Command {
	var icalURL string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a schedule stream",
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
			_, err = svc.CreateScheduleStream(ctx, engine.CreateScheduleStreamArgs{
				Name:    name,
				ICalURL: strFlag(icalURL),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&icalURL, "ical-url", "", "Make the stream mirror an external iCal feed")

	return cmd
}

func newStreamRenameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <ref> <name>",
		Short: "Rename a stream",
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
			_, err = svc.RenameScheduleStream(ctx, ref, name)
			return err
		},
	}
	return cmd
}

func newStreamArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a stream and its events",
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
			_, err = svc.ArchiveScheduleStream(ctx, ref)
			return err
		},
	}
	return cmd
}

func newStreamListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			streams, err := svc.ListScheduleStreams(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlan, "Streams"))
			for _, st := range streams {
				line := fmt.Sprintf("- %d %s %s", st.Ref, st.Name, ui.Muted.Render(string(st.Source)))
				if st.ICalURL != nil {
					line += ui.Muted.Render(" " + *st.ICalURL)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(streams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}

func newStreamEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Events on user streams",
	}
	cmd.AddCommand(
		newEventAddCmd(),
		newEventUpdateCmd(),
		newEventArchiveCmd(),
		newEventListCmd(),
	)
	return cmd
}

func newEventAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <stream-ref> <name> <start> <end>",
		Short: "Add an event to a user stream",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			streamRef, err := parseRef(args[0])
			if err != nil {
				return err
			}
			name, err := domain.NewEntityName(args[1])
			if err != nil {
				return err
			}
			start, err := schedule.ParseADate(args[2])
			if err != nil {
				return domain.InputValidationError{Field: "start", Msg: args[2]}
			}
			end, err := schedule.ParseADate(args[3])
			if err != nil {
				return domain.InputValidationError{Field: "end", Msg: args[3]}
			}
			_, err = svc.CreateScheduleEvent(ctx, engine.CreateScheduleEventArgs{
				StreamRef: streamRef,
				Name:      name,
				StartDate: start,
				EndDate:   end,
			})
			return err
		},
	}
	return cmd
}

func newEventUpdateCmd() *cobra.Command {
	var name string
	var start string
	var end string

	cmd := &cobra.Command{
		Use:   "update <event-ref>",
		Short: "Update a user event",
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
			eventArgs := engine.UpdateScheduleEventArgs{Ref: ref}
			if eventArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if eventArgs.StartDate, err = parseDateFlag(start); err != nil {
				return err
			}
			if eventArgs.EndDate, err = parseDateFlag(end); err != nil {
				return err
			}
			_, err = svc.UpdateScheduleEvent(ctx, eventArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&start, "start", "", "New start date")
	cmd.Flags().StringVar(&end, "end", "", "New end date")

	return cmd
}

func newEventArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <event-ref>",
		Short: "Archive an event",
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
			_, err = svc.ArchiveScheduleEvent(ctx, ref)
			return err
		},
	}
	return cmd
}

func newEventListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <stream-ref>",
		Short: "List a stream's events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			streamRef, err := parseRef(args[0])
			if err != nil {
				return err
			}
			events, err := svc.ListScheduleEvents(ctx, streamRef)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPlan, "Events"))
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "- %d %s %s\n", e.Ref, e.Name,
					ui.Muted.Render(e.StartDate.String()+" to "+e.EndDate.String()))
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Tasks pushed in from Slack or email",
	}
	cmd.AddCommand(newPushIngestCmd(), newPushArchiveCmd(), newPushListCmd())
	return cmd
}

func newPushIngestCmd() *cobra.Command {
	var kind string
	var sender string
	var channel string
	var subject string
	var period string
	var eisen string
	var difficulty string

	cmd := &cobra.Command{
		Use:   "ingest <body>",
		Short: "Record an incoming message as a push task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			pushArgs := engine.IngestPushTaskArgs{
				Kind:    domain.PushTaskKind(kind),
				Sender:  sender,
				Channel: strFlag(channel),
				Subject: strFlag(subject),
				Body:    args[0],
			}
			if eisen != "" || difficulty != "" {
				genPeriod := period
				if genPeriod == "" {
					genPeriod = string(schedule.PeriodDaily)
				}
				genParams, err := parseGenParams(genPeriod, eisen, difficulty, "")
				if err != nil {
					return err
				}
				pushArgs.GenParams = &genParams
			}
			_, err = svc.IngestPushTask(ctx, pushArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "slack", "slack or email")
	cmd.Flags().StringVar(&sender, "sender", "", "Who sent it (required)")
	cmd.Flags().StringVar(&channel, "channel", "", "Slack channel")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&period, "period", "", "Generation period override")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of the generated task")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of the generated task")
	_ = cmd.MarkFlagRequired("sender")

	return cmd
}

func newPushArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a push task and its generated inbox task",
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
			_, err = svc.ArchivePushTask(ctx, ref)
			return err
		},
	}
	return cmd
}

func newPushListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List push tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := svc.ListPushTasks(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTask, "Push Tasks"))
			for _, t := range tasks {
				fmt.Fprintf(cmd.OutOrStdout(), "- %d [%s] %s %s\n", t.Ref, t.Kind, t.Sender, ui.Muted.Render(t.Body))
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
