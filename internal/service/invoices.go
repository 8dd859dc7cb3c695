package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/tax"
	"github.com/jesses-code-adventures/practice/internal/utils"
)

// LineInput is one line as entered by the user. Fields left empty are filled
// from the sales item, and the tax rate from the SAC code after that.
type LineInput struct {
	SalesItemID string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.NullDecimal
	Discount    decimal.Decimal
	TaxRateID   string
	SacCodeID   string
}

type InvoiceRequest struct {
	PendingInvoiceID string
	FirmID           string
	// PlaceOfSupply defaults to the client's state.
	PlaceOfSupply string
	// IssueDate defaults to today.
	IssueDate time.Time
	// InvoiceNumber defaults to the firm's next number.
	InvoiceNumber      string
	Lines              []LineInput
	AdditionalDiscount decimal.Decimal
	Paid               bool
	Notes              string
}

type referenceData struct {
	taxRates   map[string]*models.TaxRate
	sacCodes   map[string]*models.HsnSacCode
	salesItems map[string]*models.SalesItem
}

func (s *Service) loadReferenceData(ctx context.Context) (*referenceData, error) {
	var (
		rates []*models.TaxRate
		codes []*models.HsnSacCode
		items []*models.SalesItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rates, err = s.db.ListTaxRates(gctx)
		return err
	})
	g.Go(func() (err error) {
		codes, err = s.db.ListHsnSacCodes(gctx)
		return err
	})
	g.Go(func() (err error) {
		items, err = s.db.ListSalesItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tax reference data: %w", err)
	}

	ref := &referenceData{
		taxRates:   make(map[string]*models.TaxRate, len(rates)),
		sacCodes:   make(map[string]*models.HsnSacCode, len(codes)),
		salesItems: make(map[string]*models.SalesItem, len(items)),
	}
	for _, r := range rates {
		ref.taxRates[r.ID] = r
	}
	for _, c := range codes {
		ref.sacCodes[c.ID] = c
	}
	for _, i := range items {
		ref.salesItems[i.ID] = i
	}
	return ref, nil
}

func (ref *referenceData) resolveLine(n int, in LineInput) (models.LineItem, error) {
	li := models.LineItem{
		SalesItemID: in.SalesItemID,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		Discount:    in.Discount,
		TaxRateID:   in.TaxRateID,
		SacCodeID:   in.SacCodeID,
	}

	rate := in.Rate
	if in.SalesItemID != "" {
		item, ok := ref.salesItems[in.SalesItemID]
		if !ok {
			return li, validationError("line %d: unknown sales item %q", n, in.SalesItemID)
		}
		if li.Description == "" {
			li.Description = item.Description
			if li.Description == "" {
				li.Description = item.Name
			}
		}
		if !rate.Valid {
			rate = decimal.NewNullDecimal(item.Rate)
		}
		if li.TaxRateID == "" {
			li.TaxRateID = item.TaxRateID
		}
		if li.SacCodeID == "" {
			li.SacCodeID = item.SacCodeID
		}
	}

	if li.SacCodeID != "" {
		code, ok := ref.sacCodes[li.SacCodeID]
		if !ok {
			return li, validationError("line %d: unknown SAC code %q", n, li.SacCodeID)
		}
		li.SacCode = code.Code
		if li.TaxRateID == "" {
			li.TaxRateID = code.TaxRateID
		}
	}

	li.TaxRate = decimal.Zero
	if li.TaxRateID != "" {
		r, ok := ref.taxRates[li.TaxRateID]
		if !ok {
			return li, validationError("line %d: unknown tax rate %q", n, li.TaxRateID)
		}
		li.TaxRate = r.Rate
	}

	switch {
	case li.Description == "":
		return li, validationError("line %d: description is required", n)
	case !rate.Valid:
		return li, validationError("line %d: rate is required", n)
	case !li.Quantity.IsPositive():
		return li, validationError("line %d: quantity must be positive", n)
	}
	li.Rate = rate.Decimal.Round(2)
	return li, nil
}

// GenerateInvoice raises the invoice for a queued engagement. The invoice,
// the engagement's new bill status and fees, and the removal of the pending
// invoice commit together; on failure none of them happen and the pending
// invoice stays queued.
func (s *Service) GenerateInvoice(ctx context.Context, req InvoiceRequest) (*models.Invoice, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, validationError("at least one line item is required")
	}
	if req.FirmID == "" {
		return nil, validationError("a firm must be selected")
	}

	pending, err := s.db.GetPendingInvoice(ctx, req.PendingInvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending invoice: %w", err)
	}
	engagement, err := s.db.GetEngagement(ctx, pending.EngagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}
	if engagement.BillStatus != models.BillStatusToBill {
		return nil, fmt.Errorf("%w: engagement %s has bill status %s", ErrNotEligible, engagement.ID, engagement.BillStatus)
	}

	firm, err := s.db.GetFirm(ctx, req.FirmID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, validationError("firm %q does not exist", req.FirmID)
		}
		return nil, fmt.Errorf("failed to get firm: %w", err)
	}

	placeOfSupply := strings.TrimSpace(req.PlaceOfSupply)
	if placeOfSupply == "" {
		client, err := s.db.GetClient(ctx, pending.ClientID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
		if client != nil {
			placeOfSupply = client.State
		}
		if placeOfSupply == "" {
			return nil, validationError("place of supply is required")
		}
	}

	ref, err := s.loadReferenceData(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]models.LineItem, len(req.Lines))
	input := tax.Input{
		Lines:              make([]tax.Line, len(req.Lines)),
		AdditionalDiscount: req.AdditionalDiscount,
		Registered:         firm.Registered(),
		Intrastate:         tax.IsIntrastate(firm.State, placeOfSupply),
	}
	for i, in := range req.Lines {
		li, err := ref.resolveLine(i+1, in)
		if err != nil {
			return nil, err
		}
		lines[i] = li
		input.Lines[i] = tax.Line{Quantity: li.Quantity, Rate: li.Rate, Discount: li.Discount, TaxRate: li.TaxRate}
	}
	if err := tax.Validate(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	totals := tax.Compute(input)

	now := s.now().UTC()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		number, err = s.NextInvoiceNumber(ctx, firm, issueDate)
		if err != nil {
			return nil, err
		}
	}

	nextStatus, invoiceStatus := s.nextBillStatus, models.InvoicePending
	if req.Paid {
		nextStatus, invoiceStatus = models.BillStatusCollected, models.InvoicePaid
	}

	inv := &models.Invoice{
		ID:                 models.NewUUID(),
		InvoiceNumber:      number,
		EngagementID:       engagement.ID,
		ClientID:           pending.ClientID,
		FirmID:             firm.ID,
		IssueDate:          issueDate,
		Status:             invoiceStatus,
		FirmState:          firm.State,
		FirmGSTN:           firm.GSTN,
		PlaceOfSupply:      placeOfSupply,
		LineItems:          applyTotals(lines, totals),
		AdditionalDiscount: req.AdditionalDiscount.Round(2),
		SubTotal:           totals.SubTotal,
		TotalDiscount:      totals.TotalDiscount,
		TaxableAmount:      totals.TaxableAmount,
		CGST:               totals.CGST,
		SGST:               totals.SGST,
		IGST:               totals.IGST,
		TotalTax:           totals.TotalTax,
		TotalAmount:        totals.TotalAmount,
		Notes:              utils.ToPtrNil(strings.TrimSpace(req.Notes)),
		CreatedBy:          s.actor.UserID,
		CreatedAt:          now,
	}

	err = s.db.NewBatch().
		ExpectBillStatus(engagement.ID, models.BillStatusToBill).
		CreateInvoice(inv).
		UpdateEngagementBilling(engagement.ID, database.EngagementBillingUpdate{
			BillStatus: nextStatus,
			Fees:       decimal.NewNullDecimal(inv.TotalAmount),
		}).
		DeletePendingInvoice(pending.ID).
		Commit(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("engagement_id", engagement.ID).Str("invoice_number", number).Msg("invoice generation failed")
		return nil, &BillingError{Op: "generate invoice", EngagementID: engagement.ID, Err: err}
	}

	s.recordActivity(ctx, engagement.ID, inv.ClientID, models.ActivityInvoiceGenerated, map[string]any{
		"invoiceId":     inv.ID,
		"invoiceNumber": inv.InvoiceNumber,
		"totalAmount":   inv.TotalAmount.StringFixed(2),
		"billStatus":    string(nextStatus),
	})
	return inv, nil
}

func applyTotals(lines []models.LineItem, totals tax.Result) []models.LineItem {
	for i := range lines {
		r := totals.Lines[i]
		lines[i].Discount = r.Discount
		lines[i].Amount = r.Gross
		lines[i].AllocatedDiscount = r.AllocatedDiscount
		lines[i].TaxableAmount = r.Taxable
		lines[i].CGST = r.CGST
		lines[i].SGST = r.SGST
		lines[i].IGST = r.IGST
		lines[i].Total = r.Total
	}
	return lines
}

// FinancialYear is the April to March year containing t, e.g. "2025-26".
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// NextInvoiceNumber returns PREFIX/FY/NNNN, one past the highest sequence the
// firm has used in that financial year.
func (s *Service) NextInvoiceNumber(ctx context.Context, firm *models.Firm, issueDate time.Time) (string, error) {
	prefix := firm.InvoicePrefix
	if prefix == "" {
		prefix = "INV"
	}
	stem := prefix + "/" + FinancialYear(issueDate) + "/"

	invoices, err := s.db.ListInvoices(ctx, database.InvoiceFilter{FirmID: firm.ID})
	if err != nil {
		return "", fmt.Errorf("failed to list invoices: %w", err)
	}
	highest := 0
	for _, inv := range invoices {
		rest, ok := strings.CutPrefix(inv.InvoiceNumber, stem)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%04d", stem, highest+1), nil
}

func (s *Service) Invoice(ctx context.Context, id string) (*models.Invoice, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}
	return s.db.GetInvoice(ctx, id)
}

func (s *Service) Invoices(ctx context.Context, filter database.InvoiceFilter) ([]*models.Invoice, error) {
	if err := s.requireBilling(); err != nil {
		return nil, err
	}
	return s.db.ListInvoices(ctx, filter)
}

// VerifyInvoice recomputes a stored invoice from its line items and checks
// the result against the stored totals.
func (s *Service) VerifyInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := s.Invoice(ctx, id)
	if err != nil {
		return nil, err
	}

	input := tax.Input{
		Lines:              make([]tax.Line, len(inv.LineItems)),
		AdditionalDiscount: inv.AdditionalDiscount,
		Registered:         inv.FirmGSTN != "",
		Intrastate:         tax.IsIntrastate(inv.FirmState, inv.PlaceOfSupply),
	}
	for i, li := range inv.LineItems {
		input.Lines[i] = tax.Line{Quantity: li.Quantity, Rate: li.Rate, Discount: li.Discount, TaxRate: li.TaxRate}
	}
	got := tax.Compute(input)

	checks := []struct {
		name           string
		stored, actual decimal.Decimal
	}{
		{"subTotal", inv.SubTotal, got.SubTotal},
		{"totalDiscount", inv.TotalDiscount, got.TotalDiscount},
		{"taxableAmount", inv.TaxableAmount, got.TaxableAmount},
		{"cgst", inv.CGST, got.CGST},
		{"sgst", inv.SGST, got.SGST},
		{"igst", inv.IGST, got.IGST},
		{"totalTax", inv.TotalTax, got.TotalTax},
		{"totalAmount", inv.TotalAmount, got.TotalAmount},
	}
	for _, c := range checks {
		if !c.stored.Equal(c.actual) {
			return inv, fmt.Errorf("%w: %s stored %s, recomputed %s",
				ErrInvoiceMismatch, c.name, c.stored.StringFixed(2), c.actual.StringFixed(2))
		}
	}
	if !inv.TotalAmount.Equal(inv.TaxableAmount.Add(inv.TotalTax)) {
		return inv, fmt.Errorf("%w: totalAmount is not taxableAmount plus totalTax", ErrInvoiceMismatch)
	}
	return inv, nil
}
