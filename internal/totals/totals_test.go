package totals

import (
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		taxRate  float64
		subtotal float64
		tax      float64
		total    float64
	}{
		{"empty", nil, 20, 0, 0, 0},
		{"single line 10%", []Line{{Quantity: 2, UnitPrice: 50}}, 10, 100, 10, 110},
		{"zero tax", []Line{{Quantity: 3, UnitPrice: 10}, {Quantity: 1, UnitPrice: 5}}, 0, 35, 0, 35},
		{"fractional rate", []Line{{Quantity: 1, UnitPrice: 200}}, 8.5, 200, 17, 217},
		{"zero quantity", []Line{{Quantity: 0, UnitPrice: 99}}, 10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.lines, tt.taxRate)
			if diff := got.Subtotal - tt.subtotal; diff > 0.0001 || diff < -0.0001 {
				t.Errorf("Subtotal = %f, want %f", got.Subtotal, tt.subtotal)
			}
			if diff := got.Tax - tt.tax; diff > 0.0001 || diff < -0.0001 {
				t.Errorf("Tax = %f, want %f", got.Tax, tt.tax)
			}
			if diff := got.Total - tt.total; diff > 0.0001 || diff < -0.0001 {
				t.Errorf("Total = %f, want %f", got.Total, tt.total)
			}
			if len(got.LineTotals) != len(tt.lines) {
				t.Fatalf("LineTotals len = %d, want %d", len(got.LineTotals), len(tt.lines))
			}
		})
	}
}

func TestComputeRelations(t *testing.T) {
	lines := []Line{{Quantity: 1.5, UnitPrice: 19.99}, {Quantity: 7, UnitPrice: 3.25}, {Quantity: 12, UnitPrice: 0}}
	for _, rate := range []float64{0, 5.5, 10, 19.6, 100} {
		got := Compute(lines, rate)
		var sum float64
		for i, l := range lines {
			if got.LineTotals[i] != l.Quantity*l.UnitPrice {
				t.Errorf("line %d = %f, want %f", i, got.LineTotals[i], l.Quantity*l.UnitPrice)
			}
			sum += got.LineTotals[i]
		}
		if got.Subtotal != sum {
			t.Errorf("rate %v: Subtotal = %f, want %f", rate, got.Subtotal, sum)
		}
		if got.Tax != got.Subtotal*(rate/100) {
			t.Errorf("rate %v: Tax = %f, want %f", rate, got.Tax, got.Subtotal*(rate/100))
		}
		if got.Total != got.Subtotal+got.Tax {
			t.Errorf("rate %v: Total = %f, want %f", rate, got.Total, got.Subtotal+got.Tax)
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	lines := []Line{{Quantity: 3, UnitPrice: 33.33}, {Quantity: 0.25, UnitPrice: 120}}
	first := Compute(lines, 7.7)
	for i := 0; i < 10; i++ {
		again := Compute(lines, 7.7)
		if again.Subtotal != first.Subtotal || again.Tax != first.Tax || again.Total != first.Total {
			t.Fatalf("recompute %d diverged: %+v vs %+v", i, again, first)
		}
	}
}
