// Package mercadopago is a minimal REST client for the two Mercado Pago
// surfaces this backend needs: creating checkout preferences and fetching
// authoritative payment / merchant-order state.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deceroacien/backend/internal/pkg/env"
	"github.com/google/uuid"
)

const defaultAPIBaseURL = "https://api.mercadopago.com"

// ErrNotConfigured means the processor access token is missing. Handlers map
// it to a 503 so a misconfigured deployment is distinguishable from a bug.
var ErrNotConfigured = errors.New("MP_ACCESS_TOKEN is not configured")

type Client struct {
	AccessToken  string
	IntegratorID string
	BaseURL      string

	HTTPClient *http.Client
}

// APIError carries the processor's HTTP status and a body excerpt.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is a processor-side authorization
// rejection (401/403).
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

func NewClientFromEnv() *Client {
	return &Client{
		AccessToken:  strings.TrimSpace(env.GetEnv("MP_ACCESS_TOKEN", "")),
		IntegratorID: strings.TrimSpace(env.GetEnv("MP_INTEGRATOR_ID", "")),
		BaseURL:      strings.TrimRight(env.GetEnv("MP_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithoutIntegrator returns a copy of the client that omits the optional
// integrator header. Some processor accounts reject the header outright;
// checkout retries preference creation through this copy.
func (c *Client) WithoutIntegrator() *Client {
	clone := *c
	clone.IntegratorID = ""
	return &clone
}

type PreferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type PreferenceRequest struct {
	Items               []PreferenceItem       `json:"items"`
	BackURLs            *BackURLs              `json:"back_urls,omitempty"`
	AutoReturn          string                 `json:"auto_return,omitempty"`
	NotificationURL     string                 `json:"notification_url,omitempty"`
	StatementDescriptor string                 `json:"statement_descriptor,omitempty"`
	ExternalReference   string                 `json:"external_reference,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CreatePreference creates a hosted checkout session.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*PreferenceResponse, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/checkout/preferences", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())
	c.setAuthHeaders(httpReq)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var out PreferenceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("preference creation returned an empty id")
	}
	return &out, nil
}

type PaymentPayer struct {
	Email string `json:"email"`
}

type PaymentResponse struct {
	ID                json.Number            `json:"id"`
	Status            string                 `json:"status"`
	StatusDetail      string                 `json:"status_detail"`
	TransactionAmount float64                `json:"transaction_amount"`
	CurrencyID        string                 `json:"currency_id"`
	PaymentMethodID   string                 `json:"payment_method_id"`
	ExternalReference string                 `json:"external_reference"`
	Metadata          map[string]interface{} `json:"metadata"`
	Payer             PaymentPayer           `json:"payer"`

	// Raw is the unparsed response body, stored alongside the payment row.
	Raw []byte `json:"-"`
}

// GetPayment fetches the authoritative payment object by processor id.
func (c *Client) GetPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	body, err := c.get(ctx, "/v1/payments/"+strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	var out PaymentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	out.Raw = body
	return &out, nil
}

type MerchantOrderResponse struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	OrderStatus       string      `json:"order_status"`
	ExternalReference string      `json:"external_reference"`

	Raw []byte `json:"-"`
}

// GetMerchantOrder fetches a merchant order. The reconciler only uses this
// for auditing; merchant-order notifications never mutate state.
func (c *Client) GetMerchantOrder(ctx context.Context, id string) (*MerchantOrderResponse, error) {
	body, err := c.get(ctx, "/merchant_orders/"+strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	var out MerchantOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	out.Raw = body
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.setAuthHeaders(req)
	return c.do(req)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")
	if c.IntegratorID != "" {
		req.Header.Set("x-integrator-id", c.IntegratorID)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
