package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/models"
)

func newBillingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Submit engagements for billing and manage bill status",
	}

	cmd.AddCommand(
		newSubmitCmd(a),
		newQueueCmd(a),
		newBillStatusCmd(a),
	)
	return cmd
}

func newSubmitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <engagement-id>...",
		Short: "Move completed engagements to To Bill",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.SubmitForBilling(cmd.Context(), args)
			if err != nil {
				return err
			}

			for _, p := range result.Submitted {
				fmt.Printf("Submitted %s (pending invoice %s)\n", p.EngagementID, p.ID)
			}
			for _, s := range result.Skipped {
				fmt.Printf("Skipped %s: %s\n", s.EngagementID, s.Reason)
			}
			fmt.Printf("%d submitted, %d skipped\n", len(result.Submitted), len(result.Skipped))
			return nil
		},
	}
}

func newQueueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List pending invoices waiting to be raised",
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.svc.BillingQueue(cmd.Context())
			if err != nil {
				return err
			}

			if len(views) == 0 {
				fmt.Println("Billing queue is empty.")
				return nil
			}

			for _, v := range views {
				p := v.PendingInvoice
				fmt.Printf("%s | %s | %s | %s | submitted %s\n",
					p.ID, p.EngagementID, v.ClientName, v.TypeName, p.CreatedAt.Format("2006-01-02"))
				if v.PartnerName != "" {
					fmt.Printf("  Partner: %s\n", v.PartnerName)
				}
				if len(v.AssignedNames) > 0 {
					fmt.Printf("  Assigned: %s\n", strings.Join(v.AssignedNames, ", "))
				}
			}
			return nil
		},
	}
}

func newBillStatusCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "status <engagement-id> <status>",
		Short: "Change an engagement's bill status",
		Long: `Change an engagement's bill status. Statuses are none, "to bill",
"pending collection" and "collected". Moving backwards requires --force,
which only partners and admins may use.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := models.ParseBillStatus(args[1])
			if err != nil {
				return err
			}

			e, err := a.svc.TransitionBillStatus(cmd.Context(), args[0], to, force)
			if err != nil {
				return err
			}
			fmt.Printf("Engagement %s is now %s\n", e.ID, e.BillStatus)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Allow moving backwards or skipping statuses")

	return cmd
}
