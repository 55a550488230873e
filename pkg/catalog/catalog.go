package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the subset of catalog data the engine needs at item-add time.
// The price is frozen onto the order item and never re-read afterwards.
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Catalog resolves product data from the menu/catalog service.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

// --- HTTP catalog (calls the menu service) ---

type httpCatalog struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCatalog creates a catalog backed by the menu service REST API.
func NewHTTPCatalog(baseURL string, timeout time.Duration) Catalog {
	return &httpCatalog{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: unexpected status %d for product %s", resp.StatusCode, id)
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("catalog: failed to decode product: %w", err)
	}
	return &product, nil
}

// --- Static catalog (fixed product table, used in development and tests) ---

type staticCatalog struct {
	products map[uuid.UUID]Product
}

// NewStaticCatalog creates a catalog serving a fixed set of products.
func NewStaticCatalog(products []Product) Catalog {
	m := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &staticCatalog{products: m}
}

func (c *staticCatalog) GetProduct(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
