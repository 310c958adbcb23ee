package pricing

import "github.com/noah-isme/backend-checkout/internal/money"

// Adjustments carries optional order-level fee inputs in minor units. Nil
// fields mean "not supplied" and are treated as zero.
type Adjustments struct {
	Shipping         *Money
	ShippingDiscount *Money
	Handling         *Money
	Insurance        *Money
	GiftWrap         *Money
}

// Fees is the reconciled fee delta applied on top of subtotal and tax.
type Fees struct {
	NetShipping Money
	FeeTotal    Money
}

// ReconcileFees combines order-level adjustments into a single fee delta.
// NetShipping may go negative when the discount exceeds shipping; the value
// propagates unclamped. Pure function, no failure modes.
func ReconcileFees(adj Adjustments) Fees {
	net := money.Coalesce(adj.Shipping) - money.Coalesce(adj.ShippingDiscount)
	return Fees{
		NetShipping: net,
		FeeTotal:    net + money.Coalesce(adj.Handling) + money.Coalesce(adj.Insurance) + money.Coalesce(adj.GiftWrap),
	}
}
