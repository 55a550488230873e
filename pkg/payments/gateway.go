package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the gateway actively rejects the charge.
var ErrDeclined = errors.New("payments: charge declined")

// Gateway confirms electronic payments with an external processor.
// Confirm must return within the configured timeout; a timeout is a
// failure, never a retryable success.
type Gateway interface {
	Confirm(ctx context.Context, amount decimal.Decimal, accountRef string) error
}

// --- HTTP gateway ---

type httpGateway struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPGateway creates a gateway client for the payment processor API.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) Gateway {
	return &httpGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

type confirmRequest struct {
	Amount     string `json:"amount"`
	AccountRef string `json:"account_ref"`
}

type confirmResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

func (g *httpGateway) Confirm(ctx context.Context, amount decimal.Decimal, accountRef string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(confirmRequest{
		Amount:     amount.StringFixed(2),
		AccountRef: accountRef,
	})
	if err != nil {
		return fmt.Errorf("payments: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges/confirm", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("payments: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("payments: confirmation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payments: unexpected status %d", resp.StatusCode)
	}

	var result confirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("payments: failed to decode response: %w", err)
	}
	if !result.Approved {
		if result.Reason != "" {
			return fmt.Errorf("%w: %s", ErrDeclined, result.Reason)
		}
		return ErrDeclined
	}
	return nil
}

// --- Approve-all gateway (development and tests) ---

type approveAllGateway struct{}

// NewApproveAllGateway creates a gateway that approves every charge.
func NewApproveAllGateway() Gateway {
	return &approveAllGateway{}
}

func (g *approveAllGateway) Confirm(_ context.Context, _ decimal.Decimal, _ string) error {
	return nil
}
