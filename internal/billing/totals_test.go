package billing

import (
	"testing"

	"fakti/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price string) models.LineItem {
	return models.LineItem{
		Quantity:   d(qty),
		UnitPrice:  d(price),
		LineAmount: LineAmount(d(qty), d(price)),
	}
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name  string
		qty   string
		price string
		want  string
	}{
		{name: "whole numbers", qty: "10", price: "150", want: "1500"},
		{name: "zero quantity", qty: "0", price: "99.99", want: "0"},
		{name: "zero price", qty: "3", price: "0", want: "0"},
		{name: "rounds half up", qty: "0.5", price: "0.05", want: "0.03"},
		{name: "rounds half up on the third place", qty: "1.5", price: "0.33", want: "0.5"},
		{name: "rounds down below half", qty: "1.1", price: "0.31", want: "0.34"},
		{name: "fractional quantity", qty: "2.25", price: "19.99", want: "44.98"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(d(tt.qty), d(tt.price))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
			assert.True(t, got.Equal(d(tt.qty).Mul(d(tt.price)).Round(2)))
		})
	}
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []models.LineItem
		tax          string
		discount     string
		wantSubtotal string
		wantTax      string
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "no line items",
			lines:        nil,
			tax:          "10",
			discount:     "5",
			wantSubtotal: "0",
			wantTax:      "0",
			wantDiscount: "0",
			wantTotal:    "0",
		},
		{
			name:         "two lines with tax",
			lines:        []models.LineItem{line("10", "150"), line("20", "100")},
			tax:          "10",
			discount:     "0",
			wantSubtotal: "3500",
			wantTax:      "350",
			wantDiscount: "0",
			wantTotal:    "3850",
		},
		{
			name:         "tax and discount",
			lines:        []models.LineItem{line("1", "1000")},
			tax:          "10",
			discount:     "5",
			wantSubtotal: "1000",
			wantTax:      "100",
			wantDiscount: "50",
			wantTotal:    "1050",
		},
		{
			name:         "rounding of tax and discount",
			lines:        []models.LineItem{line("1", "33.33")},
			tax:          "7.5",
			discount:     "12.5",
			wantSubtotal: "33.33",
			wantTax:      "2.5",
			wantDiscount: "4.17",
			wantTotal:    "31.66",
		},
		{
			name:         "discount above subtotal gives negative total",
			lines:        []models.LineItem{line("1", "100")},
			tax:          "0",
			discount:     "150",
			wantSubtotal: "100",
			wantTax:      "0",
			wantDiscount: "150",
			wantTotal:    "-50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := make([]decimal.Decimal, 0, len(tt.lines))
			for _, l := range tt.lines {
				amounts = append(amounts, l.LineAmount)
			}

			got := CalculateTotals(amounts, d(tt.tax), d(tt.discount))

			assert.True(t, got.Subtotal.Equal(d(tt.wantSubtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.TaxAmount.Equal(d(tt.wantTax)), "tax %s", got.TaxAmount)
			assert.True(t, got.DiscountAmount.Equal(d(tt.wantDiscount)), "discount %s", got.DiscountAmount)
			assert.True(t, got.Total.Equal(d(tt.wantTotal)), "total %s", got.Total)
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount).Sub(got.DiscountAmount)))
		})
	}
}

func TestApplyTotals_OverwritesOnlyDerivedFields(t *testing.T) {
	inv := &models.Invoice{
		InvoiceNumber:   "INV-2025-00001",
		Currency:        "HTG",
		Status:          models.InvoiceStatusSent,
		TaxPercent:      d("10"),
		DiscountPercent: d("0"),
		Subtotal:        d("999"),
		Total:           d("999"),
		LineItems:       []models.LineItem{line("10", "150"), line("20", "100")},
	}

	ApplyTotals(inv)

	assert.True(t, inv.Subtotal.Equal(d("3500")))
	assert.True(t, inv.TaxAmount.Equal(d("350")))
	assert.True(t, inv.DiscountAmount.IsZero())
	assert.True(t, inv.Total.Equal(d("3850")))
	assert.Equal(t, "INV-2025-00001", inv.InvoiceNumber)
	assert.Equal(t, "HTG", inv.Currency)
	assert.Equal(t, models.InvoiceStatusSent, inv.Status)
	assert.Len(t, inv.LineItems, 2)
}

func TestApplyTotals_Idempotent(t *testing.T) {
	inv := &models.Invoice{
		TaxPercent:      d("8.25"),
		DiscountPercent: d("3"),
		LineItems:       []models.LineItem{line("3", "19.99"), line("0.5", "7.49")},
	}

	first := ApplyTotals(inv)
	second := ApplyTotals(inv)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestNextNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-00001", NextNumber(2025, 0))
	assert.Equal(t, "INV-2025-00007", NextNumber(2025, 6))
	assert.Equal(t, "INV-2026-12346", NextNumber(2026, 12345))
	assert.Equal(t, "INV-2024-100000", NextNumber(2024, 99999))
}
