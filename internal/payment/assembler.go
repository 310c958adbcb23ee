package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/backend-checkout/internal/money"
	"github.com/noah-isme/backend-checkout/internal/order"
	"github.com/noah-isme/backend-checkout/internal/pricing"
)

// Content is the ephemeral payment-generation input supplied by the caller:
// the requested currency plus optional order-level adjustments in minor units.
type Content struct {
	Currency         string       `json:"currency" validate:"required"`
	Shipping         *money.Money `json:"shipping,omitempty"`
	ShippingDiscount *money.Money `json:"shippingDiscount,omitempty"`
	Handling         *money.Money `json:"handling,omitempty"`
	Insurance        *money.Money `json:"insurance,omitempty"`
	GiftWrap         *money.Money `json:"giftWrap,omitempty"`
}

// Adjustments converts the optional fee fields into the reconciler's input.
func (c Content) Adjustments() pricing.Adjustments {
	return pricing.Adjustments{
		Shipping:         c.Shipping,
		ShippingDiscount: c.ShippingDiscount,
		Handling:         c.Handling,
		Insurance:        c.Insurance,
		GiftWrap:         c.GiftWrap,
	}
}

// Request is an assembled processor request ready for submission by a
// separate component. Assemblers never contact the processor themselves.
type Request interface {
	Processor() string
}

// Assembler assembles a processor-specific payment request for an order. One
// implementation exists per supported processor, selected by configuration.
type Assembler interface {
	Processor() string
	Assemble(ctx context.Context, ord order.Order, content Content) (Request, error)
}

// ErrMissingOrderID reports that payment assembly was attempted for an order
// without durable identity. This is an internal invariant violation.
var ErrMissingOrderID = errors.New("payment: order has no durable id")

// AssemblyError wraps an upstream price-resolution failure.
type AssemblyError struct {
	Cause error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("payment: price resolution failed: %v", e.Cause)
}

// Unwrap exposes the wrapped pricing failure to errors.Is/As.
func (e *AssemblyError) Unwrap() error { return e.Cause }

// Select returns the configured assembler implementation by processor name.
func Select(name string, assemblers ...Assembler) (Assembler, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, a := range assemblers {
		if a != nil && a.Processor() == normalized {
			return a, nil
		}
	}
	return nil, fmt.Errorf("payment: unsupported processor %q", name)
}
