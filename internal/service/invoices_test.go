package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.StringFixed(2))
}

func TestGenerateInvoiceIntrastate(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{
		PendingInvoiceID: pending.ID,
		FirmID:           "f1",
		Lines:            []LineInput{auditLine(1)},
	})
	require.NoError(t, err)

	assert.Equal(t, "RAO/2025-26/0001", inv.InvoiceNumber)
	assert.Equal(t, "Maharashtra", inv.PlaceOfSupply)
	assert.Equal(t, models.InvoicePending, inv.Status)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, "Audit fee", inv.LineItems[0].Description)
	assert.Equal(t, "998222", inv.LineItems[0].SacCode)
	assertAmount(t, "18", inv.LineItems[0].TaxRate, "taxRate")

	assertAmount(t, "10000", inv.SubTotal, "subTotal")
	assertAmount(t, "10000", inv.TaxableAmount, "taxableAmount")
	assertAmount(t, "900", inv.CGST, "cgst")
	assertAmount(t, "900", inv.SGST, "sgst")
	assertAmount(t, "0", inv.IGST, "igst")
	assertAmount(t, "11800", inv.TotalAmount, "totalAmount")

	e, err := f.store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPendingCollection, e.BillStatus)
	require.True(t, e.Fees.Valid)
	assertAmount(t, "11800", e.Fees.Decimal, "fees")

	_, err = f.store.GetPendingInvoice(ctx, pending.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	stored, err := f.store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assertAmount(t, "11800", stored.TotalAmount, "stored totalAmount")
	assert.Equal(t, "e1", stored.EngagementID)

	assert.Equal(t, []models.ActivityType{models.ActivityBillingSubmitted, models.ActivityInvoiceGenerated}, f.activity.types())
}

func TestGenerateInvoiceInterstateAndPaid(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RolePartner)
	ctx := context.Background()
	pending := f.submit(t, svc, "e4")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{
		PendingInvoiceID: pending.ID,
		FirmID:           "f1",
		Lines:            []LineInput{auditLine(2)},
		Paid:             true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Karnataka", inv.PlaceOfSupply)
	assert.Equal(t, models.InvoicePaid, inv.Status)
	assertAmount(t, "0", inv.CGST, "cgst")
	assertAmount(t, "0", inv.SGST, "sgst")
	assertAmount(t, "3600", inv.IGST, "igst")
	assertAmount(t, "23600", inv.TotalAmount, "totalAmount")

	e, err := f.store.GetEngagement(ctx, "e4")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusCollected, e.BillStatus)
}

func TestGenerateInvoiceAdditionalDiscount(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{
		PendingInvoiceID: pending.ID,
		FirmID:           "f1",
		Lines: []LineInput{
			{Description: "Audit fieldwork", Quantity: decimal.NewFromInt(1), Rate: decimal.NewNullDecimal(dec("6000")), SacCodeID: "sac1"},
			{Description: "Tax audit report", Quantity: decimal.NewFromInt(1), Rate: decimal.NewNullDecimal(dec("4000")), SacCodeID: "sac1"},
		},
		AdditionalDiscount: dec("1000"),
	})
	require.NoError(t, err)

	assertAmount(t, "600", inv.LineItems[0].AllocatedDiscount, "line 1 allocated")
	assertAmount(t, "400", inv.LineItems[1].AllocatedDiscount, "line 2 allocated")
	assertAmount(t, "1000", inv.TotalDiscount, "totalDiscount")
	assertAmount(t, "9000", inv.TaxableAmount, "taxableAmount")
	assertAmount(t, "810", inv.CGST, "cgst")
	assertAmount(t, "810", inv.SGST, "sgst")
	assertAmount(t, "10620", inv.TotalAmount, "totalAmount")

	_, err = svc.VerifyInvoice(ctx, inv.ID)
	assert.NoError(t, err)
}

func TestGenerateInvoiceUnregisteredFirmChargesNoTax(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f2", Lines: []LineInput{auditLine(1)}})
	require.NoError(t, err)
	assertAmount(t, "0", inv.TotalTax, "totalTax")
	assertAmount(t, "10000", inv.TotalAmount, "totalAmount")
	assert.Equal(t, "INV/2025-26/0001", inv.InvoiceNumber)
}

func TestGenerateInvoiceValidationBeforeStore(t *testing.T) {
	// a nil store panics on use, so these must fail before any read
	svc := New(nil, nil, nil, models.Actor{UserID: "u", Role: models.RoleAccounts}, Options{})
	ctx := context.Background()

	_, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: "p1", FirmID: "f1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: "p1", Lines: []LineInput{auditLine(1)}})
	assert.ErrorIs(t, err, ErrValidation)

	staff := New(nil, nil, nil, models.Actor{UserID: "u", Role: models.RoleStaff}, Options{})
	_, err = staff.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: "p1", FirmID: "f1", Lines: []LineInput{auditLine(1)}})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGenerateInvoiceRejectsBadLines(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	cases := map[string]InvoiceRequest{
		"discount above amount": {Lines: []LineInput{{SalesItemID: "s1", Quantity: decimal.NewFromInt(1), Discount: dec("10001")}}},
		"zero quantity":         {Lines: []LineInput{{SalesItemID: "s1"}}},
		"no rate":               {Lines: []LineInput{{Description: "Advice", Quantity: decimal.NewFromInt(1)}}},
		"unknown sales item":    {Lines: []LineInput{{SalesItemID: "nope", Quantity: decimal.NewFromInt(1)}}},
		"unknown firm":          {FirmID: "nope", Lines: []LineInput{auditLine(1)}},
		"additional too big":    {Lines: []LineInput{auditLine(1)}, AdditionalDiscount: dec("20000")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			req.PendingInvoiceID = pending.ID
			if req.FirmID == "" {
				req.FirmID = "f1"
			}
			_, err := svc.GenerateInvoice(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	e, err := f.store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusToBill, e.BillStatus)
	_, err = f.store.GetPendingInvoice(ctx, pending.ID)
	assert.NoError(t, err)
}

func TestGenerateInvoiceFailedCommitKeepsQueue(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	f.breakWrites(t, "no_delete", "DELETE", "OLD.collection = 'pendingInvoices'")

	_, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f1", Lines: []LineInput{auditLine(1)}})
	var billingErr *BillingError
	require.ErrorAs(t, err, &billingErr)
	assert.Equal(t, "e1", billingErr.EngagementID)

	e, err := f.store.GetEngagement(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusToBill, e.BillStatus)
	assert.False(t, e.Fees.Valid)

	_, err = f.store.GetPendingInvoice(ctx, pending.ID)
	assert.NoError(t, err)

	invoices, err := f.store.ListInvoices(ctx, database.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestGenerateInvoiceTwiceForSamePendingInvoice(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	req := InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f1", Lines: []LineInput{auditLine(1)}}
	_, err := svc.GenerateInvoice(ctx, req)
	require.NoError(t, err)

	_, err = svc.GenerateInvoice(ctx, req)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestNextInvoiceNumber(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()

	for _, id := range []string{"e1", "e4"} {
		pending := f.submit(t, svc, id)
		_, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f1", Lines: []LineInput{auditLine(1)}})
		require.NoError(t, err)
	}

	firm, err := f.store.GetFirm(ctx, "f1")
	require.NoError(t, err)

	next, err := svc.NextInvoiceNumber(ctx, firm, testNow)
	require.NoError(t, err)
	assert.Equal(t, "RAO/2025-26/0003", next)

	next, err = svc.NextInvoiceNumber(ctx, firm, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "RAO/2026-27/0001", next)
}

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2099, time.June, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FinancialYear(tt.date), tt.date.String())
	}
}

func TestVerifyInvoiceDetectsTampering(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{PendingInvoiceID: pending.ID, FirmID: "f1", Lines: []LineInput{auditLine(1)}})
	require.NoError(t, err)

	_, err = svc.VerifyInvoice(ctx, inv.ID)
	require.NoError(t, err)

	inv.CGST = dec("1000")
	inv.TotalTax = dec("1900")
	inv.TotalAmount = dec("11900")
	require.NoError(t, f.store.NewBatch().SaveInvoice(inv).Commit(ctx))

	_, err = svc.VerifyInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceMismatch)
}

func TestRenderInvoicePDF(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleAccounts)
	ctx := context.Background()
	pending := f.submit(t, svc, "e1")

	inv, err := svc.GenerateInvoice(ctx, InvoiceRequest{
		PendingInvoiceID: pending.ID,
		FirmID:           "f1",
		Lines:            []LineInput{{SalesItemID: "s1", Quantity: decimal.NewFromInt(1), Description: "Statutory audit for the financial year ended 31 March 2025 including limited review"}},
		Notes:            "Payment due within 30 days",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "invoice.pdf")
	written, err := svc.RenderInvoicePDF(ctx, inv.ID, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	_, err = f.as(models.RoleStaff).RenderInvoicePDF(ctx, inv.ID, path)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "invoice_RAO-2025-26-0001.pdf", sanitizeFileName("invoice_RAO-2025-26-0001.pdf"))
	assert.Equal(t, "Acme_Traders__.pdf", sanitizeFileName("Acme Traders & .pdf"))
}

func TestWrapDescriptionText(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrapDescriptionText("short", 10))
	assert.Equal(t, []string{"statutory", "audit fee", "for FY"}, wrapDescriptionText("statutory audit fee for FY", 10))
}
