package pricing

import (
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-checkout/internal/money"
)

// Money represents a monetary value stored in minor units.
type Money = money.Money

// Item describes a line item used for totals calculation. UnitPrice is the
// resolved catalog price in minor units, never a stored value.
type Item struct {
	ID        uuid.UUID
	Qty       int
	UnitPrice Money
	TaxCode   string
}

// LineTotal holds the computed monetary components of one line.
type LineTotal struct {
	ItemID    uuid.UUID
	LineTotal Money
	LineTax   Money
}

// Totals aggregates computed pricing components for an order.
type Totals struct {
	Subtotal Money
	Tax      Money
	Lines    []LineTotal
}

// TaxPolicy computes line tax from a tax code and a line total. Rate logic is
// owned by the collaborator behind this interface, not by the calculator.
type TaxPolicy interface {
	Tax(taxCode string, lineTotal Money) Money
}

// BpsTable is a TaxPolicy backed by a basis-points table keyed by tax code.
// Codes missing from the table are taxed at DefaultBps.
type BpsTable struct {
	Rates      map[string]int
	DefaultBps int
}

// Tax implements TaxPolicy.
func (t BpsTable) Tax(taxCode string, lineTotal Money) Money {
	bps := t.DefaultBps
	if rate, ok := t.Rates[strings.ToUpper(strings.TrimSpace(taxCode))]; ok {
		bps = rate
	}
	if bps <= 0 || lineTotal <= 0 {
		return 0
	}
	return (lineTotal * Money(bps)) / 10000
}

// ZeroTax is a TaxPolicy that taxes nothing.
type ZeroTax struct{}

// Tax implements TaxPolicy.
func (ZeroTax) Tax(string, Money) Money { return 0 }

// ComputeTotals calculates per-line and aggregate totals. It is a pure
// function: calling it twice over the same inputs yields identical results.
// Items with non-positive quantity contribute nothing.
func ComputeTotals(items []Item, policy TaxPolicy) Totals {
	totals := Totals{Lines: make([]LineTotal, 0, len(items))}
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		lineTotal := Money(it.Qty) * it.UnitPrice
		var lineTax Money
		if policy != nil {
			lineTax = policy.Tax(it.TaxCode, lineTotal)
		}
		totals.Subtotal += lineTotal
		totals.Tax += lineTax
		totals.Lines = append(totals.Lines, LineTotal{ItemID: it.ID, LineTotal: lineTotal, LineTax: lineTax})
	}
	return totals
}
