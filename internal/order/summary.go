package order

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-checkout/internal/catalog"
	"github.com/noah-isme/backend-checkout/internal/common"
	"github.com/noah-isme/backend-checkout/internal/money"
	"github.com/noah-isme/backend-checkout/internal/pricing"
)

// TokenSigner mints an order-scoped token bound to an email claim.
type TokenSigner interface {
	Sign(ctx context.Context, email string) (string, error)
}

// Summary is the checkout summary response returned to clients.
type Summary struct {
	ID            string          `json:"id"`
	UserID        *string         `json:"userId,omitempty"`
	Total         *money.Money    `json:"total,omitempty"`
	Tax           *money.Money    `json:"tax,omitempty"`
	Comment       *string         `json:"comment,omitempty"`
	AuthToken     string          `json:"authToken"`
	Firstname     string          `json:"firstname,omitempty"`
	Lastname      string          `json:"lastname,omitempty"`
	Company       string          `json:"company,omitempty"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	PaidTotal     money.Money     `json:"paidTotal"`
	RefundedTotal money.Money     `json:"refundedTotal"`
	Guest         bool            `json:"guest"`
	Items         []SummaryItem   `json:"items"`
	ShippingAddr  *SummaryAddress `json:"shippingAddress,omitempty"`
	BillingAddr   *SummaryAddress `json:"billingAddress,omitempty"`
}

// SummaryItem is one order line in the summary response.
type SummaryItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	TaxCode   string `json:"taxCode,omitempty"`
}

// SummaryAddress is the summary's address payload.
type SummaryAddress struct {
	Street     string `json:"street"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone,omitempty"`
}

// SummaryOptions carries per-request inputs to the summary builder.
type SummaryOptions struct {
	// BearerToken, when present, is reused as the summary's auth token
	// instead of minting a new one.
	BearerToken string
	// Currency is required when the order carries no cached total.
	Currency string
}

// SummaryService builds the checkout summary for an order.
type SummaryService struct {
	Store    Store
	Resolver catalog.Resolver
	Tax      pricing.TaxPolicy
	Tokens   TokenSigner
	// PlaceholderDomain is the internal domain assigned to system-generated
	// guest accounts; matching emails are redacted from summaries.
	PlaceholderDomain string
}

// Build assembles the summary. Items, addresses, and totals are fetched
// concurrently; any branch failure fails the whole summary, and sibling
// branches run to completion rather than being torn down.
func (s *SummaryService) Build(ctx context.Context, ord Order, opts SummaryOptions) (Summary, error) {
	if s == nil || s.Store == nil {
		return Summary{}, errors.New("order: summary service not configured")
	}

	authToken := opts.BearerToken
	if authToken == "" {
		if s.Tokens == nil {
			return Summary{}, errors.New("order: token signer not configured")
		}
		minted, err := s.Tokens.Sign(ctx, ord.Email)
		if err != nil {
			return Summary{}, err
		}
		authToken = minted
	}

	if ord.Total == nil && strings.TrimSpace(opts.Currency) == "" {
		return Summary{}, common.NewAppError(
			"BAD_REQUEST",
			"currency is required when the order has no cached total",
			http.StatusBadRequest,
			nil,
		)
	}

	var (
		items    []Item
		shipping *Address
		billing  *Address
		total    *money.Money
		tax      *money.Money
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		items, err = s.Store.Items(ctx, ord.ID)
		return err
	})
	g.Go(func() error {
		var err error
		shipping, err = s.Store.Address(ctx, ord.ID, true)
		return err
	})
	g.Go(func() error {
		var err error
		billing, err = s.Store.Address(ctx, ord.ID, false)
		return err
	})
	g.Go(func() error {
		if ord.Total != nil {
			cached := *ord.Total
			total = &cached
			return nil
		}
		currency, _ := money.Parse(opts.Currency)
		lines, err := s.Store.Items(ctx, ord.ID)
		if err != nil {
			return err
		}
		refs := make([]catalog.LineRef, 0, len(lines))
		for _, it := range lines {
			refs = append(refs, catalog.LineRef{ItemID: it.ID, ProductID: it.ProductID})
		}
		resolved, err := s.Resolver.Resolve(ctx, refs, currency)
		if err != nil {
			return err
		}
		pricingItems := make([]pricing.Item, 0, len(lines))
		for _, it := range lines {
			pricingItems = append(pricingItems, pricing.Item{
				ID:        it.ID,
				Qty:       it.Quantity,
				UnitPrice: resolved[it.ID].Price.Cents,
				TaxCode:   it.TaxCode,
			})
		}
		totals := pricing.ComputeTotals(pricingItems, s.Tax)
		total = &totals.Subtotal
		tax = &totals.Tax
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{
		ID:            ord.ID.String(),
		Total:         total,
		Tax:           tax,
		Comment:       ord.Comment,
		AuthToken:     authToken,
		Firstname:     ord.Firstname,
		Lastname:      ord.Lastname,
		Company:       ord.Company,
		Email:         s.redactEmail(ord.Email),
		Phone:         ord.Phone,
		Status:        ord.Status,
		PaymentStatus: ord.PaymentStatus,
		PaidTotal:     ord.PaidTotal,
		RefundedTotal: ord.RefundedTotal,
		Guest:         ord.Guest(),
		Items:         make([]SummaryItem, 0, len(items)),
		ShippingAddr:  summaryAddress(shipping),
		BillingAddr:   summaryAddress(billing),
	}
	if ord.UserID != nil {
		id := ord.UserID.String()
		summary.UserID = &id
	}
	for _, it := range items {
		summary.Items = append(summary.Items, SummaryItem{
			ID:        it.ID.String(),
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			TaxCode:   it.TaxCode,
		})
	}
	return summary, nil
}

func (s *SummaryService) redactEmail(email string) string {
	domain := strings.ToLower(strings.TrimSpace(s.PlaceholderDomain))
	if domain == "" || email == "" {
		return email
	}
	if strings.HasSuffix(strings.ToLower(email), "@"+domain) {
		return ""
	}
	return email
}

func summaryAddress(a *Address) *SummaryAddress {
	if a == nil {
		return nil
	}
	return &SummaryAddress{
		Street:     a.Street,
		Street2:    a.Street2,
		City:       a.City,
		State:      a.State,
		Country:    a.Country,
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
	}
}
