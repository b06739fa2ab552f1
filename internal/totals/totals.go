// Package totals derives invoice amounts from line items and a tax rate.
//
// Amounts are plain float64 values and are never rounded here: rounding to
// display precision belongs to the formatter and is applied at render time only,
// so repeated recomputation never compounds rounding error.
package totals

// Line is the pricing input of one invoice item.
type Line struct {
	Quantity  float64
	UnitPrice float64
}

// Result holds the derived amounts for a set of lines.
type Result struct {
	LineTotals []float64 `json:"line_totals"`
	Subtotal   float64   `json:"subtotal"`
	Tax        float64   `json:"tax"`
	Total      float64   `json:"total"`
}

// LineTotal returns quantity * unit price.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// Compute recomputes every line total and the invoice totals.
// taxRate is a percentage: 8.5 means 8.5%.
// No validation is performed; an empty slice yields zero totals.
func Compute(lines []Line, taxRate float64) Result {
	res := Result{LineTotals: make([]float64, len(lines))}
	for i, l := range lines {
		lt := LineTotal(l.Quantity, l.UnitPrice)
		res.LineTotals[i] = lt
		res.Subtotal += lt
	}
	res.Tax = res.Subtotal * (taxRate / 100)
	res.Total = res.Subtotal + res.Tax
	return res
}
