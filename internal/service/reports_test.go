package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
)

func invoicedFixture(t *testing.T) (*fixture, *Service) {
	t.Helper()
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	for _, id := range []string{"e1", "e4"} {
		pending := f.submit(t, svc, id)
		_, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f1", Lines: []LineInput{auditLine(1)}})
		require.NoError(t, err)
	}
	return f, svc
}

func TestRevenueReport(t *testing.T) {
	_, svc := invoicedFixture(t)
	ctx := context.Background()

	rows, err := svc.RevenueReport(ctx, database.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "RAO/2025-26/0001", rows[0].InvoiceNumber)
	assert.Equal(t, "2025-05-10", rows[0].IssueDate)
	assert.Equal(t, "Acme Traders", rows[0].ClientName)
	assert.Equal(t, "27AAACA1234A1Z5", rows[0].ClientGSTIN)
	assert.Equal(t, "Rao & Co", rows[0].FirmName)
	assertAmount(t, "11800", rows[0].TotalAmount, "totalAmount")

	assert.Equal(t, "Bangalore Exports", rows[1].ClientName)
	assert.Equal(t, readmodel.NotAvailable, rows[1].ClientGSTIN)

	rows, err = svc.RevenueReport(ctx, database.InvoiceFilter{ClientID: "c2"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	staff := New(nil, nil, nil, models.Actor{UserID: "emp-1", Role: models.RoleStaff}, Options{})
	_, err = staff.RevenueReport(ctx, database.InvoiceFilter{})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExportRevenueCSV(t *testing.T) {
	_, svc := invoicedFixture(t)

	rows, err := svc.RevenueReport(context.Background(), database.InvoiceFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportRevenueCSV(rows, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Invoice Number,Date,Client,GSTIN,Firm,Status,Subtotal,Discount,Taxable Amount,Tax,Total", lines[0])

	parsed, err := csv.NewReader(strings.NewReader(lines[1])).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"RAO/2025-26/0001", "2025-05-10", "Acme Traders", "27AAACA1234A1Z5", "Rao & Co", "Pending",
		"10000.00", "0.00", "10000.00", "1800.00", "11800.00",
	}, parsed)
}

func TestExportRevenueCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportRevenueCSV(nil, &buf))
	assert.Equal(t, "Invoice Number,Date,Client,GSTIN,Firm,Status,Subtotal,Discount,Taxable Amount,Tax,Total\n", buf.String())
}

func TestExportRevenueXLSX(t *testing.T) {
	_, svc := invoicedFixture(t)

	rows, err := svc.RevenueReport(context.Background(), database.InvoiceFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportRevenueXLSX(rows, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	sheet, err := book.GetRows(revenueSheet)
	require.NoError(t, err)
	require.Len(t, sheet, 4)
	assert.Equal(t, revenueHeader, sheet[0])
	assert.Equal(t, "RAO/2025-26/0001", sheet[1][0])
	assert.Equal(t, "Total", sheet[3][0])
	assert.Equal(t, "23600", sheet[3][10])
}
