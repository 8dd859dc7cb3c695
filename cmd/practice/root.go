package main

import (
	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/config"
	"github.com/jesses-code-adventures/practice/internal/service"
)

type app struct {
	cfg *config.Config
	svc *service.Service
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "practice",
		Short: "Billing and timesheets for a chartered accountancy practice",
		Long: `Move completed engagements through billing: submit them to the billing queue,
raise GST invoices against queued work, and track collection. Also records
time against engagements and exports revenue reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newEngagementsCmd(a),
		newBillingCmd(a),
		newInvoicesCmd(a),
		newReportsCmd(a),
		newClientsCmd(a),
		newTimesheetCmd(a),
		newImportCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}
