package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/service"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Export billing reports",
	}

	cmd.AddCommand(newRevenueReportCmd(a))
	return cmd
}

func newRevenueReportCmd(a *app) *cobra.Command {
	var (
		filterFlags invoiceFilterFlags
		format      string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Export invoiced revenue as CSV or XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			var export func([]service.RevenueRow, io.Writer) error
			switch format {
			case "csv":
				export = service.ExportRevenueCSV
			case "xlsx":
				export = service.ExportRevenueXLSX
				if output == "" {
					return fmt.Errorf("xlsx output needs a file, use --output")
				}
			default:
				return fmt.Errorf("unknown format %q, use csv or xlsx", format)
			}

			filter, err := filterFlags.filter()
			if err != nil {
				return err
			}

			rows, err := a.svc.RevenueReport(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output == "" {
				return export(rows, os.Stdout)
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer file.Close()

			if err := export(rows, file); err != nil {
				return err
			}
			fmt.Printf("Exported %d invoices to %s\n", len(rows), output)
			return nil
		},
	}

	filterFlags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, defaults to stdout for csv")

	return cmd
}
