package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
)

// Order is the gateway-side record created before payment capture. Amount is in
// minor currency units (paise for INR), as the gateway requires.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// IGateway defines the interface for the payment gateway adapter.
type IGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// gateway implements IGateway against a Razorpay-style orders API.
type gateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	maxReceipt int
	httpClient *http.Client
}

// NewGateway creates a payment gateway adapter from injected configuration.
func NewGateway(cfg *config.Config) IGateway {
	return &gateway{
		keyID:      cfg.RazorpayKeyID,
		keySecret:  cfg.RazorpayKeySecret,
		baseURL:    cfg.RazorpayBaseURL,
		maxReceipt: cfg.MaxReceiptLength,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// orderRequest is the wire format of the order-creation call.
type orderRequest struct {
	Amount   int64  `json:"amount"` // Minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

// CreateOrder creates a payment order at the gateway. The amount is given in
// major currency units and converted to minor units (x100) on the wire. The
// receipt label is truncated to the gateway's 40-character limit.
func (g *gateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %v", amount)
	}
	if len(receipt) > g.maxReceipt {
		receipt = receipt[:g.maxReceipt]
	}

	reqBody := orderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: currency,
		Receipt:  receipt,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order creation call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d creating order: %s", resp.StatusCode, string(body))
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway order response missing id")
	}
	return &order, nil
}

// VerifySignature checks a payment confirmation against the server-held key
// secret. The expected signature is HMAC-SHA256 over "<order_id>|<payment_id>",
// hex-encoded. Comparison is constant-time since this is a trust-boundary
// check. A mismatch is a verification result, not an error.
func (g *gateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
