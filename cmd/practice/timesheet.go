package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/service"
)

func newTimesheetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timesheet",
		Aliases: []string{"ts"},
		Short:   "Record time against engagements",
	}

	cmd.AddCommand(
		newStartCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newListTimeCmd(a),
		newHoursCmd(a),
		newExportTimeCmd(a),
	)
	return cmd
}

func newStartCmd(a *app) *cobra.Command {
	var description, fromTime string

	cmd := &cobra.Command{
		Use:   "start <engagement-id>",
		Short: "Start a timer",
		Long:  "Start a timer against an engagement. This will automatically stop any running timer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var start time.Time
			if fromTime != "" {
				t, err := a.svc.ParseTimeString(fromTime)
				if err != nil {
					return err
				}
				start = t
			}

			entry, stopped, err := a.svc.StartTimer(cmd.Context(), args[0], description, start)
			if err != nil {
				return err
			}

			if stopped != nil {
				fmt.Printf("Stopped timer on %s (%s)\n", stopped.EngagementID, service.FormatDuration(a.svc.CalculateDuration(stopped)))
			}
			fmt.Printf("Started timer on %s at %s\n", entry.EngagementID, entry.StartTime.Format("15:04:05"))
			if entry.Description != nil {
				fmt.Printf("Description: %s\n", *entry.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description of the work")
	cmd.Flags().StringVarP(&fromTime, "from", "f", "", "Start time (YYYY-MM-DD HH:MM or HH:MM)")

	return cmd
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.svc.StopTimer(cmd.Context())
			if errors.Is(err, service.ErrNoActiveTimer) {
				fmt.Println("No active timer.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("Stopped timer on %s at %s (%s)\n",
				entry.EngagementID, entry.EndTime.Format("15:04:05"), service.FormatDuration(a.svc.CalculateDuration(entry)))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := a.svc.ActiveTimer(cmd.Context())
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Println("No active timer.")
				return nil
			}

			fmt.Printf("Active timer on %s since %s (%s)\n",
				entry.EngagementID, entry.StartTime.Format("15:04:05"), service.FormatDuration(a.svc.CalculateDuration(entry)))
			if entry.Description != nil {
				fmt.Printf("Description: %s\n", *entry.Description)
			}
			return nil
		},
	}
}

func newListTimeCmd(a *app) *cobra.Command {
	var limit int
	var fromDate, toDate string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your recent time entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.svc.ListTimeEntries(cmd.Context(), fromDate, toDate, limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No time entries found.")
				return nil
			}

			for _, e := range entries {
				status, endTime := "Active", "now"
				if e.EndTime != nil {
					status, endTime = "Completed", e.EndTime.Format("15:04:05")
				}
				fmt.Printf("%s | %s | %s - %s (%s) | %s\n",
					e.EngagementID,
					e.StartTime.Format("2006-01-02"),
					e.StartTime.Format("15:04:05"),
					endTime,
					service.FormatDuration(a.svc.CalculateDuration(e)),
					status)
				if e.Description != nil {
					fmt.Printf("- %s\n", *e.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of entries to show")
	cmd.Flags().StringVarP(&fromDate, "from", "f", "", "Show entries from this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&toDate, "to", "t", "", "Show entries to this date (YYYY-MM-DD)")

	return cmd
}

func newHoursCmd(a *app) *cobra.Command {
	var engagementID, period, periodDate, fromDate, toDate string

	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Display total worked hours",
		Long:  "Display total worked hours with optional filtering by engagement, period, or date range.",
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := a.svc.TotalHours(cmd.Context(), engagementID, period, periodDate, fromDate, toDate)
			if err != nil {
				return err
			}
			fmt.Printf("Total: %s (%.2f hours)\n", service.FormatDuration(total), total.Hours())
			return nil
		},
	}

	cmd.Flags().StringVarP(&engagementID, "engagement", "e", "", "Filter by engagement ID")
	cmd.Flags().StringVarP(&period, "period", "p", "", "Period type: day, week, fortnight, month")
	cmd.Flags().StringVarP(&periodDate, "date", "d", "", "Date in the period (YYYY-MM-DD), defaults to today when using -p")
	cmd.Flags().StringVarP(&fromDate, "from", "f", "", "Show hours from this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&toDate, "to", "t", "", "Show hours to this date (YYYY-MM-DD)")

	return cmd
}

func newExportTimeCmd(a *app) *cobra.Command {
	var fromDate, toDate, output string
	var limit int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your time entries to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			entries, err := a.svc.ListTimeEntries(ctx, fromDate, toDate, limit)
			if err != nil {
				return err
			}

			if output == "" {
				return a.svc.ExportTimeEntriesCSV(ctx, entries, os.Stdout)
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()

			if err := a.svc.ExportTimeEntriesCSV(ctx, entries, file); err != nil {
				return err
			}
			fmt.Printf("Exported %d time entries to %s\n", len(entries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromDate, "from", "f", "", "Export entries from this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&toDate, "to", "t", "", "Export entries to this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 1000, "Maximum number of entries to export")

	return cmd
}
