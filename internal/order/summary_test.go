package order

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-checkout/internal/catalog"
	"github.com/noah-isme/backend-checkout/internal/common"
	"github.com/noah-isme/backend-checkout/internal/money"
	"github.com/noah-isme/backend-checkout/internal/pricing"
)

type summaryStore struct {
	items    []Item
	shipping *Address
	billing  *Address
	itemsErr error
	addrErr  error
}

func (s *summaryStore) Order(context.Context, uuid.UUID) (Order, error) {
	return Order{}, ErrNotFound
}

func (s *summaryStore) Items(context.Context, uuid.UUID) ([]Item, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return s.items, nil
}

func (s *summaryStore) Address(_ context.Context, _ uuid.UUID, shipping bool) (*Address, error) {
	if s.addrErr != nil {
		return nil, s.addrErr
	}
	if shipping {
		return s.shipping, nil
	}
	return s.billing, nil
}

type summaryCatalog struct {
	products map[string]catalog.Product
}

func (s summaryCatalog) Product(_ context.Context, id string) (catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return catalog.Product{}, errors.New("not found")
	}
	return p, nil
}

func (s summaryCatalog) Products(_ context.Context, ids []string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubSigner struct {
	token string
	err   error
	calls int
}

func (s *stubSigner) Sign(context.Context, string) (string, error) {
	s.calls++
	return s.token, s.err
}

func summaryFixture() (*SummaryService, *summaryStore, *stubSigner, Order) {
	ordID := uuid.New()
	store := &summaryStore{
		items: []Item{
			{ID: uuid.New(), OrderID: ordID, ProductID: "p1", Quantity: 2, TaxCode: "STD"},
			{ID: uuid.New(), OrderID: ordID, ProductID: "p2", Quantity: 1},
		},
		shipping: &Address{OrderID: ordID, Shipping: true, Street: "1 Main St", City: "Springfield", Country: "US", PostalCode: "49007"},
	}
	signer := &stubSigner{token: "minted-token"}
	svc := &SummaryService{
		Store: store,
		Resolver: catalog.Resolver{Client: summaryCatalog{products: map[string]catalog.Product{
			"p1": {ID: "p1", SKU: "SKU-1", Prices: []catalog.Price{{Currency: "USD", Cents: 500, Active: true}}},
			"p2": {ID: "p2", SKU: "SKU-2", Prices: []catalog.Price{{Currency: "USD", Cents: 1000, Active: true}}},
		}}},
		Tax:               pricing.BpsTable{Rates: map[string]int{"STD": 1000}},
		Tokens:            signer,
		PlaceholderDomain: "guest.invalid",
	}
	ord := Order{
		ID:            ordID,
		Status:        StatusOpen,
		PaymentStatus: PaymentUnpaid,
		Email:         "buyer@example.com",
		Firstname:     "Ada",
	}
	return svc, store, signer, ord
}

func TestBuildRecomputesTotals(t *testing.T) {
	svc, _, _, ord := summaryFixture()

	summary, err := svc.Build(context.Background(), ord, SummaryOptions{Currency: "USD"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.Total == nil || *summary.Total != 2000 {
		t.Fatalf("expected recomputed total 2000, got %v", summary.Total)
	}
	if summary.Tax == nil || *summary.Tax != 100 {
		t.Fatalf("expected recomputed tax 100, got %v", summary.Tax)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 summary items, got %d", len(summary.Items))
	}
	if summary.ShippingAddr == nil || summary.ShippingAddr.City != "Springfield" {
		t.Fatalf("expected shipping address, got %+v", summary.ShippingAddr)
	}
	if summary.BillingAddr != nil {
		t.Fatal("expected no billing address")
	}
	if !summary.Guest {
		t.Fatal("order without user id must summarise as guest")
	}
	if summary.AuthToken != "minted-token" {
		t.Fatalf("expected minted token, got %q", summary.AuthToken)
	}
}

func TestBuildPrefersCachedTotal(t *testing.T) {
	svc, _, _, ord := summaryFixture()
	cached := money.Money(4242)
	ord.Total = &cached

	// No currency supplied: the cached total must make recomputation
	// unnecessary.
	summary, err := svc.Build(context.Background(), ord, SummaryOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.Total == nil || *summary.Total != 4242 {
		t.Fatalf("expected cached total 4242, got %v", summary.Total)
	}
	if summary.Tax != nil {
		t.Fatal("cached totals must not recompute tax")
	}
}

func TestBuildRequiresCurrencyWithoutCachedTotal(t *testing.T) {
	svc, _, _, ord := summaryFixture()

	_, err := svc.Build(context.Background(), ord, SummaryOptions{})
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", appErr.HTTPStatus)
	}
}

func TestBuildReusesBearerToken(t *testing.T) {
	svc, _, signer, ord := summaryFixture()

	summary, err := svc.Build(context.Background(), ord, SummaryOptions{Currency: "USD", BearerToken: "inbound-token"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.AuthToken != "inbound-token" {
		t.Fatalf("expected inbound token to be reused, got %q", summary.AuthToken)
	}
	if signer.calls != 0 {
		t.Fatalf("signer must not be called when a bearer token exists, got %d calls", signer.calls)
	}
}

func TestBuildRedactsPlaceholderEmail(t *testing.T) {
	svc, _, _, ord := summaryFixture()
	ord.Email = "g-12345@GUEST.invalid"

	summary, err := svc.Build(context.Background(), ord, SummaryOptions{Currency: "USD", BearerToken: "tok"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.Email != "" {
		t.Fatalf("placeholder email must be redacted, got %q", summary.Email)
	}

	ord.Email = "buyer@example.com"
	summary, err = svc.Build(context.Background(), ord, SummaryOptions{Currency: "USD", BearerToken: "tok"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.Email != "buyer@example.com" {
		t.Fatalf("real email must pass through, got %q", summary.Email)
	}
}

func TestBuildFailsWhenResolutionFails(t *testing.T) {
	svc, _, _, ord := summaryFixture()

	_, err := svc.Build(context.Background(), ord, SummaryOptions{Currency: "EUR"})
	if !catalog.IsNoPrice(err) {
		t.Fatalf("expected NoPriceError, got %v", err)
	}
}

func TestBuildFailsWhenBranchFails(t *testing.T) {
	svc, store, _, ord := summaryFixture()
	store.addrErr = errors.New("storage down")

	_, err := svc.Build(context.Background(), ord, SummaryOptions{Currency: "USD"})
	if err == nil || err.Error() != "storage down" {
		t.Fatalf("expected storage failure to surface, got %v", err)
	}
}

func TestBuildMintingFailurePropagates(t *testing.T) {
	svc, _, signer, ord := summaryFixture()
	signer.err = errors.New("signing backend unavailable")

	_, err := svc.Build(context.Background(), ord, SummaryOptions{Currency: "USD"})
	if err == nil {
		t.Fatal("expected signing failure to surface")
	}
}
