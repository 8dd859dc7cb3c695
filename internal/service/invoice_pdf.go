package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
)

// RenderInvoicePDF writes a stored invoice to fileName, or to a name derived
// from the invoice number when fileName is empty. It returns the path written.
func (s *Service) RenderInvoicePDF(ctx context.Context, invoiceID, fileName string) (string, error) {
	inv, err := s.Invoice(ctx, invoiceID)
	if err != nil {
		return "", err
	}

	firm, err := s.db.GetFirm(ctx, inv.FirmID)
	if err != nil {
		return "", fmt.Errorf("failed to get firm: %w", err)
	}
	client, err := s.db.GetClient(ctx, inv.ClientID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return "", fmt.Errorf("failed to get client: %w", err)
	}

	if fileName == "" {
		fileName = sanitizeFileName(fmt.Sprintf("invoice_%s.pdf", strings.ReplaceAll(inv.InvoiceNumber, "/", "-")))
	}
	if err := buildInvoicePDF(inv, firm, client).OutputFileAndClose(fileName); err != nil {
		return "", fmt.Errorf("failed to write invoice PDF: %w", err)
	}
	return fileName, nil
}

func sanitizeFileName(fileName string) string {
	var b strings.Builder
	for _, r := range fileName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' {
			b.WriteRune(r)
		} else if r == ' ' {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func buildInvoicePDF(inv *models.Invoice, firm *models.Firm, client *models.Client) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Firm header
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, tr(firm.Name))
	pdf.SetFont("Arial", "B", 12)
	title := "TAX INVOICE"
	if !firm.Registered() {
		title = "INVOICE"
	}
	pdf.CellFormat(70, 10, title, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range addressLines(firm.AddressLine1, firm.AddressLine2, firm.City, &firm.State, firm.PostalCode) {
		pdf.Cell(120, 5, tr(line))
		pdf.Ln(5)
	}
	if firm.Registered() {
		pdf.Cell(120, 5, fmt.Sprintf("GSTIN: %s", firm.GSTN))
		pdf.Ln(5)
	}
	if firm.PAN != nil {
		pdf.Cell(120, 5, fmt.Sprintf("PAN: %s", *firm.PAN))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// Bill To on the left, invoice details on the right
	top := pdf.GetY()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(95, 7, "Bill To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	if client == nil {
		pdf.Cell(95, 5, "Unknown Client")
		pdf.Ln(5)
	} else {
		pdf.Cell(95, 5, tr(client.Name))
		pdf.Ln(5)
		if client.ContactName != nil {
			pdf.Cell(95, 5, tr(*client.ContactName))
			pdf.Ln(5)
		}
		for _, line := range addressLines(client.AddressLine1, client.AddressLine2, client.City, &client.State, client.PostalCode) {
			pdf.Cell(95, 5, tr(line))
			pdf.Ln(5)
		}
		if client.GSTIN != nil {
			pdf.Cell(95, 5, fmt.Sprintf("GSTIN: %s", *client.GSTIN))
			pdf.Ln(5)
		}
	}
	leftBottom := pdf.GetY()

	pdf.SetXY(110, top)
	details := [][2]string{
		{"Invoice No:", inv.InvoiceNumber},
		{"Date:", inv.IssueDate.Format("02 Jan 2006")},
		{"Place of Supply:", inv.PlaceOfSupply},
		{"Status:", string(inv.Status)},
	}
	for _, d := range details {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(35, 6, d[0])
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(45, 6, tr(d[1]))
		pdf.SetXY(110, pdf.GetY()+6)
	}
	pdf.SetXY(10, max(leftBottom, pdf.GetY())+6)

	// Line items; widths total 190mm
	widths := []float64{62, 18, 12, 22, 18, 22, 16, 20}
	headers := []string{"Description", "SAC", "Qty", "Rate", "Discount", "Taxable", "Tax %", "Total"}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, h, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 8)
	for _, li := range inv.LineItems {
		descriptionLines := wrapDescriptionText(li.Description, 38)
		rowHeight := float64(len(descriptionLines)) * 5
		if rowHeight < 6 {
			rowHeight = 6
		}

		x, y := pdf.GetX(), pdf.GetY()
		pdf.Rect(x, y, widths[0], rowHeight, "D")
		for i, line := range descriptionLines {
			pdf.SetXY(x+1, y+float64(i)*5+0.5)
			pdf.Cell(widths[0]-2, 5, tr(line))
		}
		pdf.SetXY(x+widths[0], y)

		discount := li.Discount.Add(li.AllocatedDiscount)
		cells := []string{
			li.SacCode,
			li.Quantity.String(),
			money(li.Rate),
			money(discount),
			money(li.TaxableAmount),
			li.TaxRate.String(),
			money(li.Total),
		}
		for i, c := range cells {
			ln, align := 0, "R"
			if i == 0 {
				align = "C"
			}
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i+1], rowHeight, c, "1", ln, align, false, 0, "")
		}
	}

	// Totals
	pdf.Ln(4)
	total := func(label string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.Cell(150, 7, label)
		pdf.CellFormat(40, 7, money(amount), "", 1, "R", false, 0, "")
	}
	total("Subtotal:", inv.SubTotal, false)
	if inv.TotalDiscount.IsPositive() {
		total("Discount:", inv.TotalDiscount.Neg(), false)
	}
	total("Taxable Amount:", inv.TaxableAmount, false)
	switch {
	case !firm.Registered():
		// unregistered dealers do not charge GST
	case inv.IGST.IsPositive():
		total("IGST:", inv.IGST, false)
	default:
		total("CGST:", inv.CGST, false)
		total("SGST:", inv.SGST, false)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(150, 10, "Total (INR):")
	pdf.CellFormat(40, 10, money(inv.TotalAmount), "", 1, "R", false, 0, "")

	if inv.Notes != nil {
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(190, 5, tr(*inv.Notes), "", "L", false)
	}

	// Payment details
	if firm.BankName != nil || firm.AccountNumber != nil {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, "Payment Details:")
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		bank := []struct {
			label string
			value *string
		}{
			{"Bank", firm.BankName},
			{"Account Name", firm.AccountName},
			{"Account Number", firm.AccountNumber},
			{"IFSC", firm.IFSC},
		}
		for _, b := range bank {
			if b.value == nil {
				continue
			}
			pdf.Cell(40, 6, tr(fmt.Sprintf("%s: %s", b.label, *b.value)))
			pdf.Ln(6)
		}
	}

	return pdf
}

func addressLines(line1, line2, city, state, postalCode *string) []string {
	var lines []string
	if line1 != nil {
		lines = append(lines, *line1)
	}
	if line2 != nil {
		lines = append(lines, *line2)
	}

	// City, State, Postal Code on one line
	cityLine := ""
	if city != nil {
		cityLine += *city
	}
	if state != nil && *state != "" {
		if cityLine != "" {
			cityLine += ", "
		}
		cityLine += *state
	}
	if postalCode != nil {
		if cityLine != "" {
			cityLine += " "
		}
		cityLine += *postalCode
	}
	if cityLine != "" {
		lines = append(lines, cityLine)
	}
	return lines
}

func wrapDescriptionText(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	words := strings.Fields(text)
	var lines []string
	var currentLine string

	for _, word := range words {
		testLine := currentLine
		if testLine != "" {
			testLine += " "
		}
		testLine += word

		if len(testLine) <= maxChars {
			currentLine = testLine
		} else {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}
