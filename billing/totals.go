package billing

import (
	"github.com/shopspring/decimal"

	"tennis_club_backend/models"
)

// LineAmount is hours × rate rounded to cents.
func LineAmount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(2)
}

// ComputeTotals sums line items. Deduction amounts are stored positive and
// subtracted from the subtotal.
func ComputeTotals(items []models.InvoiceLineItem) models.Totals {
	subtotal := decimal.Zero
	deductions := decimal.Zero
	for _, item := range items {
		if item.IsDeduction {
			deductions = deductions.Add(item.Amount)
		} else {
			subtotal = subtotal.Add(item.Amount)
		}
	}
	return models.Totals{
		Subtotal:   subtotal,
		Deductions: deductions,
		Total:      subtotal.Sub(deductions),
	}
}
