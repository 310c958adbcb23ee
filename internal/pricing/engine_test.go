package pricing

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeTotalsLineMath(t *testing.T) {
	itemA := uuid.New()
	itemB := uuid.New()
	policy := BpsTable{Rates: map[string]int{"STD": 1000}}

	totals := ComputeTotals([]Item{
		{ID: itemA, Qty: 2, UnitPrice: 500, TaxCode: "STD"},
		{ID: itemB, Qty: 1, UnitPrice: 1000},
	}, policy)

	if totals.Subtotal != 2000 {
		t.Fatalf("expected subtotal 2000, got %d", totals.Subtotal)
	}
	if totals.Tax != 100 {
		t.Fatalf("expected tax 100, got %d", totals.Tax)
	}
	if len(totals.Lines) != 2 {
		t.Fatalf("expected 2 line totals, got %d", len(totals.Lines))
	}
	if totals.Lines[0].LineTotal != 1000 || totals.Lines[0].LineTax != 100 {
		t.Fatalf("unexpected line A: %+v", totals.Lines[0])
	}
	if totals.Lines[1].LineTotal != 1000 || totals.Lines[1].LineTax != 0 {
		t.Fatalf("unexpected line B: %+v", totals.Lines[1])
	}
}

func TestComputeTotalsSkipsNonPositiveQty(t *testing.T) {
	totals := ComputeTotals([]Item{
		{ID: uuid.New(), Qty: 0, UnitPrice: 500},
		{ID: uuid.New(), Qty: -2, UnitPrice: 500},
		{ID: uuid.New(), Qty: 3, UnitPrice: 100},
	}, ZeroTax{})
	if totals.Subtotal != 300 {
		t.Fatalf("expected subtotal 300, got %d", totals.Subtotal)
	}
	if len(totals.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(totals.Lines))
	}
}

func TestComputeTotalsMonotonic(t *testing.T) {
	id := uuid.New()
	base := ComputeTotals([]Item{{ID: id, Qty: 2, UnitPrice: 500}}, ZeroTax{})
	moreQty := ComputeTotals([]Item{{ID: id, Qty: 3, UnitPrice: 500}}, ZeroTax{})
	morePrice := ComputeTotals([]Item{{ID: id, Qty: 2, UnitPrice: 600}}, ZeroTax{})
	if moreQty.Subtotal <= base.Subtotal {
		t.Fatal("subtotal must grow with quantity")
	}
	if morePrice.Subtotal <= base.Subtotal {
		t.Fatal("subtotal must grow with unit price")
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []Item{
		{ID: uuid.New(), Qty: 2, UnitPrice: 500, TaxCode: "STD"},
		{ID: uuid.New(), Qty: 1, UnitPrice: 1000},
	}
	policy := BpsTable{Rates: map[string]int{"STD": 1000}}
	first := ComputeTotals(items, policy)
	second := ComputeTotals(items, policy)
	if first.Subtotal != second.Subtotal || first.Tax != second.Tax {
		t.Fatalf("totals changed between calls: %+v vs %+v", first, second)
	}
	for i := range first.Lines {
		if first.Lines[i] != second.Lines[i] {
			t.Fatalf("line %d changed between calls", i)
		}
	}
}

func TestBpsTableDefaultAndCase(t *testing.T) {
	policy := BpsTable{Rates: map[string]int{"STD": 1000}, DefaultBps: 500}
	if got := policy.Tax(" std ", 1000); got != 100 {
		t.Fatalf("expected case-insensitive lookup to yield 100, got %d", got)
	}
	if got := policy.Tax("UNKNOWN", 1000); got != 50 {
		t.Fatalf("expected default rate 50, got %d", got)
	}
	if got := policy.Tax("STD", 0); got != 0 {
		t.Fatalf("expected zero tax on zero total, got %d", got)
	}
}
