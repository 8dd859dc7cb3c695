package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/service"
)

func newInvoicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"inv"},
		Short:   "Raise and inspect GST invoices",
	}

	cmd.AddCommand(
		newGenerateInvoiceCmd(a),
		newListInvoicesCmd(a),
		newShowInvoiceCmd(a),
		newVerifyInvoiceCmd(a),
		newInvoicePDFCmd(a),
	)
	return cmd
}

func newGenerateInvoiceCmd(a *app) *cobra.Command {
	var (
		firmID        string
		placeOfSupply string
		lines         []string
		discount      string
		paid          bool
		number        string
		issueDate     string
		notes         string
	)

	cmd := &cobra.Command{
		Use:   "generate <pending-invoice-id>",
		Short: "Raise the invoice for a queued engagement",
		Long: `Raise the invoice for a queued engagement. Each --line is a list of
key=value pairs: item, desc, qty, rate, discount, tax and sac. Missing values
come from the sales item.

Example:
  practice invoices generate 3f1c... --firm f1 --line item=s1 --line "desc=Certification,rate=2500,sac=sac1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.InvoiceRequest{
				PendingInvoiceID: args[0],
				FirmID:           firmID,
				PlaceOfSupply:    placeOfSupply,
				InvoiceNumber:    number,
				Paid:             paid,
				Notes:            notes,
			}

			for _, l := range lines {
				in, err := parseLine(l)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, in)
			}

			if discount != "" {
				d, err := decimal.NewFromString(discount)
				if err != nil {
					return fmt.Errorf("invalid additional discount: %w", err)
				}
				req.AdditionalDiscount = d
			}

			if issueDate != "" {
				d, err := time.Parse("2006-01-02", issueDate)
				if err != nil {
					return fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
				}
				req.IssueDate = d
			}

			inv, err := a.svc.GenerateInvoice(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Generated invoice %s (%s)\n", inv.InvoiceNumber, inv.ID)
			fmt.Printf("Taxable: %s  Tax: %s  Total: %s\n",
				inv.TaxableAmount.StringFixed(2), inv.TotalTax.StringFixed(2), inv.TotalAmount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Issuing firm ID")
	cmd.Flags().StringVar(&placeOfSupply, "place-of-supply", "", "State of supply, defaults to the client's state")
	cmd.Flags().StringArrayVarP(&lines, "line", "l", nil, "Line item as key=value pairs (repeatable)")
	cmd.Flags().StringVar(&discount, "additional-discount", "", "Invoice-level discount spread across lines")
	cmd.Flags().BoolVar(&paid, "paid", false, "Mark the invoice paid and the engagement collected")
	cmd.Flags().StringVar(&number, "number", "", "Invoice number, defaults to the firm's next number")
	cmd.Flags().StringVarP(&issueDate, "date", "d", "", "Issue date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes printed on the invoice")

	_ = cmd.MarkFlagRequired("firm")
	_ = cmd.MarkFlagRequired("line")

	return cmd
}

func newListInvoicesCmd(a *app) *cobra.Command {
	var filterFlags invoiceFilterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterFlags.filter()
			if err != nil {
				return err
			}

			invoices, err := a.svc.Invoices(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if len(invoices) == 0 {
				fmt.Println("No invoices found.")
				return nil
			}

			for _, inv := range invoices {
				fmt.Printf("%s | %s | %s | %s | %s\n",
					inv.InvoiceNumber, inv.IssueDate.Format("2006-01-02"), inv.EngagementID, inv.Status, inv.TotalAmount.StringFixed(2))
			}
			return nil
		},
	}

	filterFlags.register(cmd)

	return cmd
}

func newShowInvoiceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Show an invoice with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.svc.Invoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInvoice(inv)
			return nil
		},
	}
}

func newVerifyInvoiceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <invoice-id>",
		Short: "Recompute an invoice's totals and compare them to the stored values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.svc.VerifyInvoice(cmd.Context(), args[0])
			if errors.Is(err, service.ErrInvoiceMismatch) {
				fmt.Printf("Invoice %s does not verify: %v\n", inv.InvoiceNumber, err)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Printf("Invoice %s verified: %s\n", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2))
			return nil
		},
	}
}

func newInvoicePDFCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <invoice-id>",
		Short: "Render an invoice as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.svc.RenderInvoicePDF(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			fmt.Printf("Invoice written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, defaults to invoice_<number>.pdf")

	return cmd
}

func printInvoice(inv *models.Invoice) {
	fmt.Printf("Invoice %s (%s)\n", inv.InvoiceNumber, inv.Status)
	fmt.Printf("Date: %s\n", inv.IssueDate.Format("2006-01-02"))
	fmt.Printf("Engagement: %s  Client: %s  Firm: %s\n", inv.EngagementID, inv.ClientID, inv.FirmID)
	fmt.Printf("Place of supply: %s\n\n", inv.PlaceOfSupply)

	for i, li := range inv.LineItems {
		fmt.Printf("%d. %s", i+1, li.Description)
		if li.SacCode != "" {
			fmt.Printf(" [SAC %s]", li.SacCode)
		}
		fmt.Printf("\n   %s x %s - %s = %s taxable, %s%% tax, %s total\n",
			li.Quantity.String(), li.Rate.StringFixed(2), li.Discount.Add(li.AllocatedDiscount).StringFixed(2),
			li.TaxableAmount.StringFixed(2), li.TaxRate.String(), li.Total.StringFixed(2))
	}

	fmt.Printf("\nSubtotal:  %12s\n", inv.SubTotal.StringFixed(2))
	fmt.Printf("Discount:  %12s\n", inv.TotalDiscount.StringFixed(2))
	fmt.Printf("Taxable:   %12s\n", inv.TaxableAmount.StringFixed(2))
	if inv.IGST.IsPositive() {
		fmt.Printf("IGST:      %12s\n", inv.IGST.StringFixed(2))
	} else {
		fmt.Printf("CGST:      %12s\n", inv.CGST.StringFixed(2))
		fmt.Printf("SGST:      %12s\n", inv.SGST.StringFixed(2))
	}
	fmt.Printf("Total:     %12s\n", inv.TotalAmount.StringFixed(2))
	if inv.Notes != nil {
		fmt.Printf("\n%s\n", *inv.Notes)
	}
}

type invoiceFilterFlags struct {
	from, to, firmID, clientID, status string
}

func (f *invoiceFilterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.from, "from", "f", "", "Issued on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&f.to, "to", "t", "", "Issued on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.firmID, "firm", "", "Filter by firm ID")
	cmd.Flags().StringVarP(&f.clientID, "client", "c", "", "Filter by client ID")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Filter by invoice status")
}

// filter builds the store filter. The to date is inclusive.
func (f *invoiceFilterFlags) filter() (database.InvoiceFilter, error) {
	filter := database.InvoiceFilter{FirmID: f.firmID, ClientID: f.clientID}

	if f.from != "" {
		from, err := time.Parse("2006-01-02", f.from)
		if err != nil {
			return filter, fmt.Errorf("invalid from date format, use YYYY-MM-DD: %w", err)
		}
		filter.From = &from
	}
	if f.to != "" {
		to, err := time.Parse("2006-01-02", f.to)
		if err != nil {
			return filter, fmt.Errorf("invalid to date format, use YYYY-MM-DD: %w", err)
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	if f.status != "" {
		status, err := models.ParseInvoiceStatus(f.status)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	return filter, nil
}
