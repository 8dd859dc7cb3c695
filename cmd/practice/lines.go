package main

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/practice/internal/service"
)

// parseLine reads one --line flag of comma-separated key=value pairs, for
// example "item=s1,qty=2,discount=500". Quote a pair to put a comma in it:
// `item=s1,"desc=Audit, FY 2024-25"`. Quantity defaults to 1.
func parseLine(s string) (service.LineInput, error) {
	in := service.LineInput{Quantity: decimal.NewFromInt(1)}

	r := csv.NewReader(strings.NewReader(s))
	r.TrimLeadingSpace = true
	pairs, err := r.Read()
	if err != nil {
		return in, fmt.Errorf("invalid line %q: %w", s, err)
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return in, fmt.Errorf("invalid line %q: %q is not key=value", s, pair)
		}
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)

		switch key {
		case "item":
			in.SalesItemID = value
		case "desc", "description":
			in.Description = value
		case "sac":
			in.SacCodeID = value
		case "tax":
			in.TaxRateID = value
		case "qty", "quantity", "rate", "discount":
			d, err := decimal.NewFromString(value)
			if err != nil {
				return in, fmt.Errorf("invalid line %q: %s: %w", s, key, err)
			}
			switch key {
			case "rate":
				in.Rate = decimal.NewNullDecimal(d)
			case "discount":
				in.Discount = d
			default:
				in.Quantity = d
			}
		default:
			return in, fmt.Errorf("invalid line %q: unknown key %q", s, key)
		}
	}
	return in, nil
}
