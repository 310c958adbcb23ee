package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-checkout/internal/catalog"
)

func newCatalogServer(t *testing.T, products map[string]catalog.Product) (*httptest.Server, *sync.Map) {
	t.Helper()
	var hits sync.Map
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		count, _ := hits.LoadOrStore(id, new(int))
		*(count.(*int))++
		product, ok := products[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(product)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestHTTPClientProduct(t *testing.T) {
	server, _ := newCatalogServer(t, map[string]catalog.Product{
		"p1": {ID: "p1", SKU: "SKU-1", Name: "Mug", Prices: []catalog.Price{{Currency: "USD", Cents: 500, Active: true}}},
	})
	client, err := catalog.NewHTTPClient(server.URL+"/products", nil)
	require.NoError(t, err)

	product, err := client.Product(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "SKU-1", product.SKU)
	require.Len(t, product.Prices, 1)
}

func TestHTTPClientProductNotFound(t *testing.T) {
	server, _ := newCatalogServer(t, nil)
	client, err := catalog.NewHTTPClient(server.URL+"/products", nil)
	require.NoError(t, err)

	_, err = client.Product(context.Background(), "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 404")
}

func TestHTTPClientProductsDeduplicatesAndOrders(t *testing.T) {
	server, hits := newCatalogServer(t, map[string]catalog.Product{
		"p1": {ID: "p1", SKU: "SKU-1"},
		"p2": {ID: "p2", SKU: "SKU-2"},
	})
	client, err := catalog.NewHTTPClient(server.URL+"/products", nil)
	require.NoError(t, err)

	products, err := client.Products(context.Background(), []string{"p1", "p2", "p1", "p2"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "p1", products[0].ID)
	require.Equal(t, "p2", products[1].ID)

	count, ok := hits.Load("p1")
	require.True(t, ok)
	require.Equal(t, 1, *(count.(*int)))
}

func TestHTTPClientProductsEmpty(t *testing.T) {
	server, _ := newCatalogServer(t, nil)
	client, err := catalog.NewHTTPClient(server.URL+"/products", nil)
	require.NoError(t, err)

	products, err := client.Products(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := catalog.NewHTTPClient("   ", nil)
	require.Error(t, err)
}
