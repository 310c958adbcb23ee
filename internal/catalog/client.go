package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Product represents a catalog product record as returned by the product service.
type Product struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prices      []Price `json:"prices"`
}

// Price is a single price entry attached to a product.
type Price struct {
	Currency string `json:"currency"`
	Cents    int64  `json:"cents"`
	Active   bool   `json:"active"`
}

// ActivePrice returns the first active price matching the currency code
// case-insensitively. Catalog order decides ties.
func (p Product) ActivePrice(currency string) (Price, bool) {
	for _, price := range p.Prices {
		if price.Active && strings.EqualFold(price.Currency, currency) {
			return price, true
		}
	}
	return Price{}, false
}

// Client defines the read contract consumed from the product catalog service.
type Client interface {
	Product(ctx context.Context, id string) (Product, error)
	Products(ctx context.Context, ids []string) ([]Product, error)
}

const defaultFetchConcurrency = 8

// HTTPClient fetches products from the catalog service over HTTP.
type HTTPClient struct {
	BaseURL     string
	HTTP        *http.Client
	Concurrency int
}

// NewHTTPClient constructs a catalog client for the given base URL.
func NewHTTPClient(baseURL string, httpClient *http.Client) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("catalog: base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{BaseURL: base, HTTP: httpClient}, nil
}

// Product fetches a single product by id.
func (c *HTTPClient) Product(ctx context.Context, id string) (Product, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return Product{}, errors.New("catalog: product id is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+trimmed, nil)
	if err != nil {
		return Product{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: fetch product %s: %w", trimmed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Product{}, fmt.Errorf("catalog: fetch product %s: unexpected status %d", trimmed, resp.StatusCode)
	}
	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return Product{}, fmt.Errorf("catalog: decode product %s: %w", trimmed, err)
	}
	return product, nil
}

// Products fetches the given product ids with bounded client-side fan-out and
// returns them in the requested order. Duplicate ids are fetched once.
func (c *HTTPClient) Products(ctx context.Context, ids []string) ([]Product, error) {
	distinct := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	if len(distinct) == 0 {
		return nil, nil
	}

	results := make([]Product, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = defaultFetchConcurrency
	}
	g.SetLimit(limit)
	for i, id := range distinct {
		g.Go(func() error {
			product, err := c.Product(gctx, id)
			if err != nil {
				return err
			}
			results[i] = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
