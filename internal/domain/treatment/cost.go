package treatment

import "fmt"

// VATRate is the fixed value-added tax rate.
const VATRate = 0.15

// CostLine is one row of the human-readable cost breakdown.
type CostLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// CostSummary is the cost engine's output.
type CostSummary struct {
	Subtotal        float64    `json:"subtotal"`
	DiscountApplied float64    `json:"discount_applied"`
	VATApplied      float64    `json:"vat_applied"`
	Total           float64    `json:"total"`
	Lines           []CostLine `json:"lines"`
}

// ComputeCost prices a treatment plan. The discount is capped at the
// subtotal, and VAT is charged on the pre-discount subtotal.
func ComputeCost(entries []Entry, discountInput float64, vatEnabled bool) CostSummary {
	var subtotal float64
	for _, e := range entries {
		subtotal += e.Cost
	}

	discount := discountInput
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}

	var vat float64
	if vatEnabled {
		vat = subtotal * VATRate
	}

	summary := CostSummary{
		Subtotal:        subtotal,
		DiscountApplied: discount,
		VATApplied:      vat,
		Total:           subtotal - discount + vat,
	}

	summary.Lines = append(summary.Lines, CostLine{Description: "Total Treatment Cost", Amount: subtotal})
	if discount > 0 {
		summary.Lines = append(summary.Lines, CostLine{Description: "Discount", Amount: -discount})
	}
	if vat > 0 {
		summary.Lines = append(summary.Lines, CostLine{
			Description: fmt.Sprintf("VAT (%.0f%%)", VATRate*100),
			Amount:      vat,
		})
	}
	summary.Lines = append(summary.Lines, CostLine{Description: "Final Total", Amount: summary.Total})

	return summary
}
