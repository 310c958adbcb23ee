package payment

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-checkout/internal/catalog"
	"github.com/noah-isme/backend-checkout/internal/money"
	"github.com/noah-isme/backend-checkout/internal/order"
	"github.com/noah-isme/backend-checkout/internal/pricing"
)

// PayPalRequest is the wire shape submitted to the PayPal REST payments API.
// All monetary fields are decimal strings in major currency units.
type PayPalRequest struct {
	Intent       string        `json:"intent"`
	Payer        Payer         `json:"payer"`
	Transactions []Transaction `json:"transactions"`
	RedirectURLs RedirectURLs  `json:"redirect_urls"`
}

// Processor implements Request.
func (PayPalRequest) Processor() string { return "paypal" }

// Payer identifies the funding method.
type Payer struct {
	PaymentMethod string `json:"payment_method"`
}

// Transaction carries the amount breakdown, payee, and item list.
type Transaction struct {
	Amount   Amount   `json:"amount"`
	Payee    Payee    `json:"payee"`
	ItemList ItemList `json:"item_list"`
}

// Amount is the transaction total with its itemized details.
type Amount struct {
	Currency string  `json:"currency"`
	Total    string  `json:"total"`
	Details  Details `json:"details"`
}

// Details itemizes the amount. Optional components are omitted when the
// caller did not supply them.
type Details struct {
	Subtotal         string `json:"subtotal"`
	Tax              string `json:"tax"`
	Shipping         string `json:"shipping,omitempty"`
	HandlingFee      string `json:"handling_fee,omitempty"`
	ShippingDiscount string `json:"shipping_discount,omitempty"`
	Insurance        string `json:"insurance,omitempty"`
	GiftWrap         string `json:"gift_wrap,omitempty"`
}

// Payee receives the funds.
type Payee struct {
	Email string `json:"email"`
}

// ItemList holds one entry per priced line item plus the optional shipping
// address.
type ItemList struct {
	Items           []LineItem       `json:"items"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

// LineItem is a single purchasable entry.
type LineItem struct {
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tax         string `json:"tax"`
}

// ShippingAddress is the processor's address block.
type ShippingAddress struct {
	RecipientName string `json:"recipient_name,omitempty"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	CountryCode   string `json:"country_code"`
	PostalCode    string `json:"postal_code"`
	Phone         string `json:"phone,omitempty"`
}

// RedirectURLs are the post-approval navigation targets.
type RedirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// PayPal assembles PayPal payment requests from persisted orders. It performs
// catalog fetches through its resolver but never contacts PayPal itself.
type PayPal struct {
	Store      order.Store
	Resolver   catalog.Resolver
	Tax        pricing.TaxPolicy
	PayeeEmail string
	ReturnURL  string
	CancelURL  string
}

// Processor implements Assembler.
func (PayPal) Processor() string { return "paypal" }

// Assemble builds the payment request for ord. Unknown currency codes degrade
// to the default currency; a missing active price for any line fails the
// whole assembly with *AssemblyError.
func (p PayPal) Assemble(ctx context.Context, ord order.Order, content Content) (Request, error) {
	if ord.ID == uuid.Nil {
		return nil, ErrMissingOrderID
	}
	if p.Store == nil {
		return nil, errors.New("payment: store is not configured")
	}
	currency, _ := money.Parse(content.Currency)

	var (
		items    []order.Item
		shipping *order.Address
	)
	// Sub-fetches run concurrently but are not torn down when a sibling
	// fails; the first error wins after both complete.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		items, err = p.Store.Items(ctx, ord.ID)
		return err
	})
	g.Go(func() error {
		var err error
		shipping, err = p.Store.Address(ctx, ord.ID, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refs := make([]catalog.LineRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, catalog.LineRef{ItemID: it.ID, ProductID: it.ProductID})
	}
	resolved, err := p.Resolver.Resolve(ctx, refs, currency)
	if err != nil {
		return nil, &AssemblyError{Cause: err}
	}

	lineItems := make([]LineItem, 0, len(items))
	pricingItems := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		res, ok := resolved[it.ID]
		if !ok {
			// The resolver guarantees full resolution; this filter is
			// defensive only.
			continue
		}
		pricingItems = append(pricingItems, pricing.Item{
			ID:        it.ID,
			Qty:       it.Quantity,
			UnitPrice: res.Price.Cents,
			TaxCode:   it.TaxCode,
		})
		lineItems = append(lineItems, LineItem{
			Quantity:    strconv.Itoa(it.Quantity),
			Price:       currency.Amount(res.Price.Cents),
			Currency:    currency.Code,
			SKU:         res.Product.SKU,
			Name:        res.Product.Name,
			Description: res.Product.Description,
			Tax:         currency.Amount(it.Tax(res.Price.Cents, p.Tax)),
		})
	}

	totals := pricing.ComputeTotals(pricingItems, p.Tax)
	fees := pricing.ReconcileFees(content.Adjustments())
	grandTotal := totals.Subtotal + totals.Tax + fees.FeeTotal

	var address *ShippingAddress
	if shipping != nil && shipping.Complete() {
		address = &ShippingAddress{
			RecipientName: ord.RecipientName(),
			Line1:         shipping.Street,
			Line2:         shipping.Street2,
			City:          shipping.City,
			State:         shipping.State,
			CountryCode:   shipping.Country,
			PostalCode:    shipping.PostalCode,
			Phone:         ord.Phone,
		}
	}

	return PayPalRequest{
		Intent: "sale",
		Payer:  Payer{PaymentMethod: "paypal"},
		Transactions: []Transaction{{
			Amount: Amount{
				Currency: currency.Code,
				Total:    currency.Amount(grandTotal),
				Details: Details{
					Subtotal:         currency.Amount(totals.Subtotal),
					Tax:              currency.Amount(totals.Tax),
					Shipping:         optionalAmount(currency, content.Shipping),
					HandlingFee:      optionalAmount(currency, content.Handling),
					ShippingDiscount: optionalAmount(currency, content.ShippingDiscount),
					Insurance:        optionalAmount(currency, content.Insurance),
					GiftWrap:         optionalAmount(currency, content.GiftWrap),
				},
			},
			Payee:    Payee{Email: p.PayeeEmail},
			ItemList: ItemList{Items: lineItems, ShippingAddress: address},
		}},
		RedirectURLs: RedirectURLs{ReturnURL: p.ReturnURL, CancelURL: p.CancelURL},
	}, nil
}

func optionalAmount(c money.Currency, v *money.Money) string {
	if v == nil {
		return ""
	}
	return c.Amount(*v)
}
