package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
	"github.com/jesses-code-adventures/practice/internal/utils"
)

// RevenueRow is one invoice in the revenue report.
type RevenueRow struct {
	InvoiceNumber string
	IssueDate     string
	ClientName    string
	ClientGSTIN   string
	FirmName      string
	Status        string
	SubTotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxableAmount decimal.Decimal
	TotalTax      decimal.Decimal
	TotalAmount   decimal.Decimal
}

var revenueHeader = []string{
	"Invoice Number", "Date", "Client", "GSTIN", "Firm", "Status",
	"Subtotal", "Discount", "Taxable Amount", "Tax", "Total",
}

func (s *Service) RevenueReport(ctx context.Context, filter database.InvoiceFilter) ([]RevenueRow, error) {
	invoices, err := s.Invoices(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([]RevenueRow, 0, len(invoices))
	for _, inv := range invoices {
		firmName, err := s.readModel.FirmName(ctx, inv.FirmID)
		if err != nil {
			return nil, err
		}
		client, err := s.readModel.Client(ctx, inv.ClientID)
		if err != nil {
			return nil, err
		}
		row := RevenueRow{
			InvoiceNumber: inv.InvoiceNumber,
			IssueDate:     inv.IssueDate.Format("2006-01-02"),
			ClientName:    readmodel.UnknownClient,
			ClientGSTIN:   readmodel.NotAvailable,
			FirmName:      firmName,
			Status:        string(inv.Status),
			SubTotal:      inv.SubTotal,
			Discount:      inv.TotalDiscount,
			TaxableAmount: inv.TaxableAmount,
			TotalTax:      inv.TotalTax,
			TotalAmount:   inv.TotalAmount,
		}
		if client != nil {
			row.ClientName = client.Name
			if gstin := utils.FromPtr(client.GSTIN); gstin != "" {
				row.ClientGSTIN = gstin
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r RevenueRow) record() []string {
	return []string{
		r.InvoiceNumber,
		r.IssueDate,
		r.ClientName,
		r.ClientGSTIN,
		r.FirmName,
		r.Status,
		r.SubTotal.StringFixed(2),
		r.Discount.StringFixed(2),
		r.TaxableAmount.StringFixed(2),
		r.TotalTax.StringFixed(2),
		r.TotalAmount.StringFixed(2),
	}
}

func ExportRevenueCSV(rows []RevenueRow, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(revenueHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		if err := writer.Write(r.record()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

const revenueSheet = "Revenue"

// ExportRevenueXLSX writes the report as a workbook with a bold header and a
// totals row under the amount columns.
func ExportRevenueXLSX(rows []RevenueRow, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", revenueSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	setRow := func(n int, values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		return f.SetSheetRow(revenueSheet, cell, &values)
	}

	header := make([]any, len(revenueHeader))
	for i, h := range revenueHeader {
		header[i] = h
	}
	if err := setRow(1, header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(revenueHeader))
	if err := f.SetCellStyle(revenueSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	var sub, discount, taxable, taxTotal, total decimal.Decimal
	for i, r := range rows {
		values := []any{
			r.InvoiceNumber, r.IssueDate, r.ClientName, r.ClientGSTIN, r.FirmName, r.Status,
			r.SubTotal.InexactFloat64(),
			r.Discount.InexactFloat64(),
			r.TaxableAmount.InexactFloat64(),
			r.TotalTax.InexactFloat64(),
			r.TotalAmount.InexactFloat64(),
		}
		if err := setRow(i+2, values); err != nil {
			return err
		}
		sub = sub.Add(r.SubTotal)
		discount = discount.Add(r.Discount)
		taxable = taxable.Add(r.TaxableAmount)
		taxTotal = taxTotal.Add(r.TotalTax)
		total = total.Add(r.TotalAmount)
	}

	totalsRow := len(rows) + 2
	totals := []any{
		"Total", "", "", "", "", "",
		sub.InexactFloat64(),
		discount.InexactFloat64(),
		taxable.InexactFloat64(),
		taxTotal.InexactFloat64(),
		total.InexactFloat64(),
	}
	if err := setRow(totalsRow, totals); err != nil {
		return err
	}
	if err := f.SetCellStyle(revenueSheet, fmt.Sprintf("A%d", totalsRow), fmt.Sprintf("%s%d", lastCol, totalsRow), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(revenueSheet, "A", lastCol, 16); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
