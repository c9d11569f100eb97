// Package billing holds the invoice arithmetic and numbering rules. Every
// function here is pure: callers load and persist data themselves.
package billing

import (
	"fakti/internal/models"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the precision every monetary amount is rounded to.
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Totals is the derived money state of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// LineAmount values a single line: quantity × unit price, rounded half-up
// to currency precision. No validation is performed.
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(CurrencyPlaces)
}

// CalculateTotals sums line amounts and applies the tax and discount rates.
// The total is not clamped and may be negative when the discount exceeds
// subtotal plus tax.
func CalculateTotals(lineAmounts []decimal.Decimal, taxPercent, discountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, amount := range lineAmounts {
		subtotal = subtotal.Add(amount)
	}

	tax := percentOf(subtotal, taxPercent)
	discount := percentOf(subtotal, discountPercent)

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		Total:          subtotal.Add(tax).Sub(discount),
	}
}

// ApplyTotals recomputes the four derived fields of inv from its current
// line items. Nothing else on the invoice is touched.
func ApplyTotals(inv *models.Invoice) Totals {
	amounts := make([]decimal.Decimal, 0, len(inv.LineItems))
	for _, line := range inv.LineItems {
		amounts = append(amounts, line.LineAmount)
	}

	totals := CalculateTotals(amounts, inv.TaxPercent, inv.DiscountPercent)
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.TaxAmount
	inv.DiscountAmount = totals.DiscountAmount
	inv.Total = totals.Total
	return totals
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred).Round(CurrencyPlaces)
}
