// Package tax computes GST invoice totals.
//
// Every amount is rounded to two decimal places at the line level before it is
// summed, so totals recomputed from stored line items always reproduce the
// stored invoice totals.
package tax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNoLines        = errors.New("invoice has no line items")
	ErrNegativeAmount = errors.New("amounts must not be negative")
	ErrDiscountTooBig = errors.New("discount exceeds amount")
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

type Line struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
	Discount decimal.Decimal
	// TaxRate is a percentage, e.g. 18 for 18%.
	TaxRate decimal.Decimal
}

type Input struct {
	Lines              []Line
	AdditionalDiscount decimal.Decimal
	// Registered is false for a firm without a GSTN; such invoices carry no tax.
	Registered bool
	Intrastate bool
}

type LineResult struct {
	Gross             decimal.Decimal
	Discount          decimal.Decimal
	AllocatedDiscount decimal.Decimal
	Taxable           decimal.Decimal
	CGST              decimal.Decimal
	SGST              decimal.Decimal
	IGST              decimal.Decimal
	Tax               decimal.Decimal
	Total             decimal.Decimal
}

type Result struct {
	Lines         []LineResult
	SubTotal      decimal.Decimal
	LineDiscount  decimal.Decimal
	TotalDiscount decimal.Decimal
	TaxableAmount decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	TotalTax      decimal.Decimal
	TotalAmount   decimal.Decimal
}

// IsIntrastate reports whether supply from firmState to placeOfSupply is
// within one state.
func IsIntrastate(firmState, placeOfSupply string) bool {
	return strings.EqualFold(strings.TrimSpace(firmState), strings.TrimSpace(placeOfSupply))
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Validate checks an input before it is computed.
func Validate(in Input) error {
	if len(in.Lines) == 0 {
		return ErrNoLines
	}
	if in.AdditionalDiscount.IsNegative() {
		return fmt.Errorf("additional discount: %w", ErrNegativeAmount)
	}

	gross := make([]decimal.Decimal, len(in.Lines))
	net := decimal.Zero
	subTotal := decimal.Zero
	for i, l := range in.Lines {
		if l.Quantity.IsNegative() || l.Rate.IsNegative() || l.Discount.IsNegative() || l.TaxRate.IsNegative() {
			return fmt.Errorf("line %d: %w", i+1, ErrNegativeAmount)
		}
		gross[i] = round2(l.Quantity.Mul(l.Rate))
		if round2(l.Discount).GreaterThan(gross[i]) {
			return fmt.Errorf("line %d: %w", i+1, ErrDiscountTooBig)
		}
		subTotal = subTotal.Add(gross[i])
		net = net.Add(gross[i].Sub(round2(l.Discount)))
	}

	additional := round2(in.AdditionalDiscount)
	if additional.GreaterThan(net) {
		return fmt.Errorf("additional discount: %w", ErrDiscountTooBig)
	}

	// Each line's share must fit in what its own discount left over, or the
	// line would be taxed on a negative amount.
	for i, share := range allocate(gross, subTotal, additional) {
		if share.GreaterThan(gross[i].Sub(round2(in.Lines[i].Discount))) {
			return fmt.Errorf("line %d: additional discount share %s: %w", i+1, share.StringFixed(2), ErrDiscountTooBig)
		}
	}
	return nil
}

// allocate spreads additional across lines by their share of subTotal. The
// last line with a non-zero gross takes the rounding remainder so the shares
// sum to additional exactly.
func allocate(gross []decimal.Decimal, subTotal, additional decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(gross))
	if subTotal.IsZero() || additional.IsZero() {
		return shares
	}

	lastNonZero := -1
	for i, g := range gross {
		if !g.IsZero() {
			lastNonZero = i
		}
	}

	allocated := decimal.Zero
	for i := range gross {
		if i == lastNonZero {
			shares[i] = additional.Sub(allocated)
			break
		}
		shares[i] = round2(additional.Mul(gross[i]).Div(subTotal))
		allocated = allocated.Add(shares[i])
	}
	return shares
}

// Compute applies line discounts, spreads the additional discount across
// lines by their share of the pre-discount subtotal, then taxes each line.
func Compute(in Input) Result {
	res := Result{Lines: make([]LineResult, len(in.Lines))}

	gross := make([]decimal.Decimal, len(in.Lines))
	for i, l := range in.Lines {
		gross[i] = round2(l.Quantity.Mul(l.Rate))
		res.Lines[i].Gross = gross[i]
		res.Lines[i].Discount = round2(l.Discount)
		res.SubTotal = res.SubTotal.Add(gross[i])
		res.LineDiscount = res.LineDiscount.Add(res.Lines[i].Discount)
	}

	additional := round2(in.AdditionalDiscount)
	for i, share := range allocate(gross, res.SubTotal, additional) {
		res.Lines[i].AllocatedDiscount = share
	}

	for i, l := range in.Lines {
		lr := &res.Lines[i]
		lr.Taxable = lr.Gross.Sub(lr.Discount).Sub(lr.AllocatedDiscount)

		if in.Registered {
			amount := lr.Taxable.Mul(l.TaxRate).Div(hundred)
			if in.Intrastate {
				half := round2(amount.Div(two))
				lr.CGST = half
				lr.SGST = half
				lr.Tax = half.Mul(two)
			} else {
				lr.IGST = round2(amount)
				lr.Tax = lr.IGST
			}
		}
		lr.Total = lr.Taxable.Add(lr.Tax)

		res.CGST = res.CGST.Add(lr.CGST)
		res.SGST = res.SGST.Add(lr.SGST)
		res.IGST = res.IGST.Add(lr.IGST)
		res.TotalTax = res.TotalTax.Add(lr.Tax)
	}

	res.TotalDiscount = res.LineDiscount.Add(additional)
	res.TaxableAmount = res.SubTotal.Sub(res.TotalDiscount)
	res.TotalAmount = res.TaxableAmount.Add(res.TotalTax)
	return res
}
