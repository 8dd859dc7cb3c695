package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
)

func newEngagementsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "engagements",
		Aliases: []string{"eng"},
		Short:   "List engagements",
	}

	cmd.AddCommand(newEngagementsListCmd(a), newEngagementsUnbilledCmd(a))
	return cmd
}

func newEngagementsListCmd(a *app) *cobra.Command {
	var status, clientID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List engagements with their bill status",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := database.EngagementFilter{ClientID: clientID}
			if status != "" {
				s, err := models.ParseEngagementStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}

			views, err := a.svc.Engagements(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printEngagements(views, "No engagements found.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by engagement status")
	cmd.Flags().StringVarP(&clientID, "client", "c", "", "Filter by client ID")

	return cmd
}

func newEngagementsUnbilledCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unbilled",
		Short: "List completed engagements never submitted for billing",
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.svc.UnbilledEngagements(cmd.Context())
			if err != nil {
				return err
			}
			printEngagements(views, "No unbilled engagements.")
			return nil
		},
	}
}

func printEngagements(views []*readmodel.EngagementView, empty string) {
	if len(views) == 0 {
		fmt.Println(empty)
		return
	}

	for _, v := range views {
		e := v.Engagement
		fmt.Printf("%s | %s | %s | %s | %s\n", e.ID, v.ClientName, v.TypeName, e.Status, e.BillStatus)
		if len(v.AssignedNames) > 0 {
			fmt.Printf("  Assigned: %s\n", strings.Join(v.AssignedNames, ", "))
		}
		if v.ReportedToName != "" {
			fmt.Printf("  Reports to: %s\n", v.ReportedToName)
		}
		if e.DueDate != nil {
			fmt.Printf("  Due: %s\n", e.DueDate.Format("2006-01-02"))
		}
	}
}
