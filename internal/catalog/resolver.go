package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-checkout/internal/money"
)

// LineRef identifies a single order line for price resolution.
type LineRef struct {
	ItemID    uuid.UUID
	ProductID string
}

// Resolved pairs a catalog product with the price selected for the requested currency.
type Resolved struct {
	Product Product
	Price   Price
}

// PriceMap maps item ids to their resolved product and price for one request.
// It is built once per pricing operation and never persisted.
type PriceMap map[uuid.UUID]Resolved

// NoPriceError reports that a product carries no active price in the
// requested currency. Resolution is all-or-nothing, so a single unpriced
// product fails the whole request.
type NoPriceError struct {
	SKU      string
	Currency string
}

func (e *NoPriceError) Error() string {
	return fmt.Sprintf("catalog: no active %s price for product %q", e.Currency, e.SKU)
}

// IsNoPrice reports whether err is a missing-price failure.
func IsNoPrice(err error) bool {
	var target *NoPriceError
	return errors.As(err, &target)
}

// Resolver batches catalog lookups for a set of order lines.
type Resolver struct {
	Client Client
}

// Resolve fetches every distinct product referenced by lines in one batched
// catalog operation and selects the active price in the requested currency
// for each line. Callers must treat the result as complete: if any line has
// no active price the whole resolution fails with *NoPriceError and no map is
// returned.
func (r Resolver) Resolve(ctx context.Context, lines []LineRef, currency money.Currency) (PriceMap, error) {
	if r.Client == nil {
		return nil, errors.New("catalog: client is not configured")
	}
	if len(lines) == 0 {
		return PriceMap{}, nil
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := r.Client.Products(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	resolved := make(PriceMap, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, &NoPriceError{SKU: line.ProductID, Currency: currency.Code}
		}
		price, ok := product.ActivePrice(currency.Code)
		if !ok {
			return nil, &NoPriceError{SKU: product.SKU, Currency: currency.Code}
		}
		resolved[line.ItemID] = Resolved{Product: product, Price: price}
	}
	return resolved, nil
}
