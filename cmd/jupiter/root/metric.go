package root

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/horia141/jupiter-sub011/internal/domain"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/schedule"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func newMetricCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metric",
		Short: "Track numbers over time",
	}
	cmd.AddCommand(
		newMetricAddCmd(),
		newMetricUpdateCmd(),
		newMetricArchiveCmd(),
		newMetricListCmd(),
		newMetricEntryCmd(),
	)
	return cmd
}

func newMetricAddCmd() *cobra.Command {
	var unit string
	var period string
	var eisen string
	var difficulty string
	var skipRule string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a metric",
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
			metricArgs := engine.CreateMetricArgs{Name: name, Unit: strFlag(unit)}
			if period != "" {
				genParams, err := parseGenParams(period, eisen, difficulty, skipRule)
				if err != nil {
					return err
				}
				metricArgs.CollectionParams = &genParams
			}
			_, err = svc.CreateMetric(ctx, metricArgs)
			return err
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Unit of measure (kg, km, pages...)")
	cmd.Flags().StringVar(&period, "collect", "", "Collection period; set to get reminder tasks")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of collection tasks")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of collection tasks")
	cmd.Flags().StringVar(&skipRule, "skip-rule", "", "Skip rule for collection tasks")

	return cmd
}

func newMetricUpdateCmd() *cobra.Command {
	var name string
	var unit string
	var period string
	var eisen string
	var difficulty string
	var skipRule string
	var stopCollecting bool

	cmd := &cobra.Command{
		Use:   "update <ref>",
		Short: "Update a metric",
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
			metricArgs := engine.UpdateMetricArgs{Ref: ref, Unit: strFlag(unit), ClearCollection: stopCollecting}
			if metricArgs.Name, err = parseNameFlag(name); err != nil {
				return err
			}
			if period != "" {
				genParams, err := parseGenParams(period, eisen, difficulty, skipRule)
				if err != nil {
					return err
				}
				metricArgs.CollectionParams = &genParams
			}
			_, err = svc.UpdateMetric(ctx, metricArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "New unit")
	cmd.Flags().StringVar(&period, "collect", "", "New collection period")
	cmd.Flags().StringVarP(&eisen, "eisen", "e", "", "Eisenhower class of collection tasks")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "Difficulty of collection tasks")
	cmd.Flags().StringVar(&skipRule, "skip-rule", "", "Skip rule for collection tasks")
	cmd.Flags().BoolVar(&stopCollecting, "stop-collecting", false, "Drop the collection schedule")

	return cmd
}

func newMetricArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <ref>",
		Short: "Archive a metric and its entries",
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
			_, err = svc.ArchiveMetric(ctx, ref)
			return err
		},
	}
	return cmd
}

func newMetricListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			metrics, err := svc.ListMetrics(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconMetric, "Metrics"))
			for _, m := range metrics {
				line := fmt.Sprintf("- %d %s", m.Ref, m.Name)
				if m.Unit != nil {
					line += ui.Muted.Render(" [" + *m.Unit + "]")
				}
				if m.CollectionParams != nil {
					line += ui.Muted.Render(" collected " + string(m.CollectionParams.Period))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(metrics) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}

func newMetricEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and inspect metric values",
	}
	cmd.AddCommand(
		newMetricEntryAddCmd(),
		newMetricEntryUpdateCmd(),
		newMetricEntryArchiveCmd(),
		newMetricEntryListCmd(),
	)
	return cmd
}

func newMetricEntryAddCmd() *cobra.Command {
	var when string
	var notes string

	cmd := &cobra.Command{
		Use:   "add <metric-ref> <value>",
		Short: "Record a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			metricRef, err := parseRef(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return domain.InputValidationError{Field: "value", Msg: args[1]}
			}
			entryArgs := engine.CreateMetricEntryArgs{
				MetricRef: metricRef,
				Value:     value,
				Notes:     strFlag(notes),
			}
			if when == "" {
				entryArgs.CollectionTime = schedule.TodayIn(time.UTC)
			} else {
				t, err := schedule.ParseADate(when)
				if err != nil {
					return domain.InputValidationError{Field: "when", Msg: when}
				}
				entryArgs.CollectionTime = t
			}
			_, err = svc.CreateMetricEntry(ctx, entryArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&when, "when", "", "Collection date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")

	return cmd
}

func newMetricEntryUpdateCmd() *cobra.Command {
	var value string
	var notes string

	cmd := &cobra.Command{
		Use:   "update <entry-ref>",
		Short: "Correct a recorded value",
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
			entryArgs := engine.UpdateMetricEntryArgs{Ref: ref, Notes: strFlag(notes)}
			if value != "" {
				v, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return domain.InputValidationError{Field: "value", Msg: value}
				}
				entryArgs.Value = &v
			}
			_, err = svc.UpdateMetricEntry(ctx, entryArgs)
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "New value")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")

	return cmd
}

func newMetricEntryArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <entry-ref>",
		Short: "Archive a recorded value",
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
			_, err = svc.ArchiveMetricEntry(ctx, ref)
			return err
		},
	}
	return cmd
}

func newMetricEntryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <metric-ref>",
		Short: "List values for a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			metricRef, err := parseRef(args[0])
			if err != nil {
				return err
			}
			entries, err := svc.ListMetricEntries(ctx, metricRef)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconMetric, "Entries"))
			for _, e := range entries {
				line := fmt.Sprintf("- %d %s %g", e.Ref, e.CollectionTime, e.Value)
				if e.Notes != nil {
					line += ui.Muted.Render(" " + *e.Notes)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(none)"))
			}
			return nil
		},
	}
	return cmd
}
