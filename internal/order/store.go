package order

import (
	"context"

	"github.com/google/uuid"
)

// Store is the read contract against order storage. Persistence is owned by
// the order-management service; this core only queries by order id.
type Store interface {
	// Order loads a single order. Soft-deleted orders are reported as
	// ErrNotFound.
	Order(ctx context.Context, id uuid.UUID) (Order, error)
	// Items returns the order's line items in insertion order.
	Items(ctx context.Context, orderID uuid.UUID) ([]Item, error)
	// Address returns the shipping or billing address, or nil when the order
	// has none of the requested kind.
	Address(ctx context.Context, orderID uuid.UUID, shipping bool) (*Address, error)
}
