package treatment

import (
	"math"
	"testing"
)

func TestComputeCost_VATOnPreDiscountSubtotal(t *testing.T) {
	entries := []Entry{
		{Procedure: "Filling", Cost: 150},
		{Procedure: "Cleaning", Cost: 50},
	}

	summary := ComputeCost(entries, 50, true)

	if summary.Subtotal != 200 {
		t.Errorf("subtotal = %v, want 200", summary.Subtotal)
	}
	if summary.DiscountApplied != 50 {
		t.Errorf("discount = %v, want 50", summary.DiscountApplied)
	}
	// 15% of 200, not of 150.
	if summary.VATApplied != 30 {
		t.Errorf("vat = %v, want 30", summary.VATApplied)
	}
	if summary.Total != 180 {
		t.Errorf("total = %v, want 180", summary.Total)
	}
}

func TestComputeCost_DiscountCappedAtSubtotal(t *testing.T) {
	entries := []Entry{{Cost: 100}}

	summary := ComputeCost(entries, 500, false)
	if summary.DiscountApplied != 100 {
		t.Errorf("discount = %v, want capped at 100", summary.DiscountApplied)
	}
	if summary.Total != 0 {
		t.Errorf("total = %v, want 0", summary.Total)
	}
}

func TestComputeCost_Invariant(t *testing.T) {
	cases := []struct {
		entries  []Entry
		discount float64
		vat      bool
	}{
		{nil, 0, false},
		{[]Entry{{Cost: 99.99}}, 10, true},
		{[]Entry{{Cost: 1}, {Cost: 2}, {Cost: 3}}, 100, true},
		{[]Entry{{Cost: 250}, {Cost: 750}}, -5, false},
	}
	for _, tc := range cases {
		s := ComputeCost(tc.entries, tc.discount, tc.vat)
		if s.DiscountApplied > s.Subtotal {
			t.Errorf("discount %v exceeds subtotal %v", s.DiscountApplied, s.Subtotal)
		}
		if got := s.Subtotal - s.DiscountApplied + s.VATApplied; math.Abs(got-s.Total) > 1e-9 {
			t.Errorf("total = %v, want %v", s.Total, got)
		}
	}
}

func TestComputeCost_Lines(t *testing.T) {
	// Discount and VAT lines only appear when non-zero; subtotal and final
	// total are always present.
	s := ComputeCost([]Entry{{Cost: 100}}, 0, false)
	if len(s.Lines) != 2 {
		t.Fatalf("lines = %v", s.Lines)
	}
	if s.Lines[0].Description != "Total Treatment Cost" || s.Lines[1].Description != "Final Total" {
		t.Errorf("line descriptions = %v", s.Lines)
	}

	s = ComputeCost([]Entry{{Cost: 100}}, 20, true)
	if len(s.Lines) != 4 {
		t.Fatalf("lines = %v", s.Lines)
	}
	if s.Lines[1].Description != "Discount" || s.Lines[1].Amount != -20 {
		t.Errorf("discount line = %v", s.Lines[1])
	}
	if s.Lines[2].Description != "VAT (15%)" || s.Lines[2].Amount != 15 {
		t.Errorf("vat line = %v", s.Lines[2])
	}
}
