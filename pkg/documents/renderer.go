package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// InvoiceDocument is the payload handed to the document service. The engine
// only supplies plain numeric/structural data; layout and transmission are
// the renderer's problem.
type InvoiceDocument struct {
	InvoiceID   string            `json:"invoice_id"`
	InvoiceNo   string            `json:"invoice_no"`
	Kind        string            `json:"kind"`
	PayerName   string            `json:"payer_name,omitempty"`
	PayerTaxID  string            `json:"payer_tax_id,omitempty"`
	Subtotal    string            `json:"subtotal"`
	Taxes       string            `json:"taxes"`
	Discounts   string            `json:"discounts"`
	Tip         string            `json:"tip"`
	Total       string            `json:"total"`
	OrderTotals map[string]string `json:"order_totals"`
}

// Handle identifies a rendered document in the document store.
type Handle struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// Renderer turns an applied invoice into a rendered document. Failures here
// never roll back the invoice; they are recorded on it and retried out of
// band.
type Renderer interface {
	Render(ctx context.Context, doc *InvoiceDocument) (*Handle, error)
}

// --- HTTP renderer ---

type httpRenderer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRenderer creates a renderer backed by the document service.
func NewHTTPRenderer(baseURL string, timeout time.Duration) Renderer {
	return &httpRenderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *httpRenderer) Render(ctx context.Context, doc *InvoiceDocument) (*Handle, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("documents: failed to encode invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/invoices/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("documents: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("documents: render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("documents: unexpected status %d", resp.StatusCode)
	}

	var handle Handle
	if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
		return nil, fmt.Errorf("documents: failed to decode handle: %w", err)
	}
	return &handle, nil
}

// --- Null renderer (development and tests) ---

type nullRenderer struct{}

// NewNullRenderer creates a renderer that acknowledges without rendering.
func NewNullRenderer() Renderer {
	return &nullRenderer{}
}

func (r *nullRenderer) Render(_ context.Context, doc *InvoiceDocument) (*Handle, error) {
	return &Handle{ID: doc.InvoiceID}, nil
}
