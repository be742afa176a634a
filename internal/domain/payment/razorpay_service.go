// internal/domain/payment/razorpay_service.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
)

// Gateway creates payment orders at the payment provider
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*RazorpayOrder, error)
	KeyID() string
}

// RazorpayClient talks to the Razorpay orders API
type RazorpayClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayClient creates a Razorpay client from configuration
func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayClient{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RazorpayOrder is the gateway's view of a payment order
type RazorpayOrder struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes"`
	CreatedAt int64             `json:"created_at"`
}

// CreateOrderRequest is the body of POST /orders. Amount is in paise.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// KeyID is the public key handed to the checkout widget
func (r *RazorpayClient) KeyID() string {
	return r.keyID
}

// CreateOrder creates order in Razorpay
func (r *RazorpayClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RazorpayOrder, error) {
	response, err := r.makeAPICall(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return nil, err
	}

	var razorpayOrder RazorpayOrder
	if err := json.Unmarshal(response, &razorpayOrder); err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "failed to parse payment gateway response")
	}
	if razorpayOrder.ID == "" {
		return nil, apperror.New(apperror.CodeDependency, "payment gateway returned an order without id")
	}
	return &razorpayOrder, nil
}

// makeAPICall makes HTTP calls to Razorpay API
func (r *RazorpayClient) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	if data != nil {
		var err error
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to marshal gateway request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to create gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "payment gateway unavailable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "failed to read gateway response")
	}

	if resp.StatusCode >= 400 {
		return nil, apperror.Wrap(apperror.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"payment gateway rejected the request")
	}
	return body, nil
}
