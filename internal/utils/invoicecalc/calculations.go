// Package invoicecalc holds the pure financial arithmetic of the engine:
// per-line totals and the invoice aggregation of discount, tax and charges.
// Everything here is deterministic and side-effect free; the same inputs
// always produce the same totals.
package invoicecalc

import (
	"fmt"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// moneyScale is the fixed number of fractional digits for money amounts.
// Every operation re-rounds to this scale so binary-float drift can never
// creep in through repeated arithmetic.
const moneyScale = 2

// Round2 rounds d to 2 decimal places, half up. shopspring's Round is
// half-away-from-zero, which coincides with half-up for the non-negative
// amounts admitted by validation (0.125 -> 0.13).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// LineTotal computes round(quantity × unitRate, 2) for a single line item.
// Negative quantity or rate is a validation error.
func LineTotal(quantity, unitRate decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: quantity must not be negative, got %s", apperrors.ErrValidation, quantity.String())
	}
	if unitRate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit rate must not be negative, got %s", apperrors.ErrValidation, unitRate.String())
	}
	return Round2(quantity.Mul(unitRate)), nil
}

// Totals is the aggregator output. Total always equals
// taxableBase + TaxAmount + ChargesTotal with every term rounded to 2dp
// before summation.
type Totals struct {
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	ChargesTotal decimal.Decimal
	Total        decimal.Decimal
}

// Aggregate combines line totals with a flat discount, additional charges and
// a fractional tax rate into the invoice totals.
//
// Each line is rounded on its own before summation; the fixtures treat the
// per-line-then-sum result as canonical, not sum-then-round. The discount is
// applied before tax and can never push the taxable base below zero. Flat
// per-item tax amounts are added on top of the rate-based tax.
func Aggregate(items []domain.LineItem, discount decimal.Decimal, charges []domain.AdditionalCharge, taxRate decimal.Decimal) (Totals, error) {
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return Totals{}, fmt.Errorf("%w: tax rate must be a fraction in [0,1], got %s", apperrors.ErrValidation, taxRate.String())
	}
	if discount.IsNegative() {
		return Totals{}, fmt.Errorf("%w: discount must not be negative, got %s", apperrors.ErrValidation, discount.String())
	}

	subtotal := decimal.Zero
	perItemTax := decimal.Zero
	for i, item := range items {
		lineTotal, err := LineTotal(item.Quantity, item.UnitRate)
		if err != nil {
			return Totals{}, fmt.Errorf("line item %d (%s): %w", i, item.Description, err)
		}
		subtotal = subtotal.Add(lineTotal)
		if item.PerItemTax != nil {
			if item.PerItemTax.IsNegative() {
				return Totals{}, fmt.Errorf("%w: per-item tax must not be negative on line %d", apperrors.ErrValidation, i)
			}
			perItemTax = perItemTax.Add(Round2(*item.PerItemTax))
		}
	}
	subtotal = Round2(subtotal)

	taxableBase := subtotal.Sub(Round2(discount))
	if taxableBase.IsNegative() {
		taxableBase = decimal.Zero
	}

	taxAmount := Round2(taxableBase.Mul(taxRate)).Add(perItemTax)

	chargesTotal := decimal.Zero
	for i, charge := range charges {
		if charge.Amount.IsNegative() {
			return Totals{}, fmt.Errorf("%w: additional charge %q (index %d) must not be negative", apperrors.ErrValidation, charge.Name, i)
		}
		chargesTotal = chargesTotal.Add(Round2(charge.Amount))
	}
	chargesTotal = Round2(chargesTotal)

	total := Round2(taxableBase.Add(taxAmount).Add(chargesTotal))

	return Totals{
		Subtotal:     subtotal,
		TaxAmount:    taxAmount,
		ChargesTotal: chargesTotal,
		Total:        total,
	}, nil
}

// ApplyToItems recomputes and stamps Total on every line item in place,
// returning the first validation failure encountered.
func ApplyToItems(items []domain.LineItem) error {
	for i := range items {
		total, err := LineTotal(items[i].Quantity, items[i].UnitRate)
		if err != nil {
			return fmt.Errorf("line item %d: %w", i, err)
		}
		items[i].Total = total
	}
	return nil
}
