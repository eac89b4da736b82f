package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
)

func testGateway(baseURL string) IGateway {
	return NewGateway(&config.Config{
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: "test_secret",
		RazorpayBaseURL:   baseURL,
		MaxReceiptLength:  40,
	})
}

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGateway_CreateOrder_ConvertsToMinorUnits(t *testing.T) {
	var received orderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "test_secret", pass)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)

		json.NewEncoder(w).Encode(Order{
			ID:       "order_test123",
			Amount:   received.Amount,
			Currency: received.Currency,
			Receipt:  received.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	gw := testGateway(srv.URL)
	order, err := gw.CreateOrder(context.Background(), 100, "INR", "booking-receipt")
	require.NoError(t, err)

	// 100 major units must reach the gateway as 10000 minor units
	assert.Equal(t, int64(10000), received.Amount)
	assert.Equal(t, "INR", received.Currency)
	assert.Equal(t, "order_test123", order.ID)
	assert.Equal(t, int64(10000), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestGateway_CreateOrder_TruncatesReceipt(t *testing.T) {
	var received orderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		json.NewEncoder(w).Encode(Order{ID: "order_x", Amount: received.Amount, Currency: received.Currency})
	}))
	defer srv.Close()

	gw := testGateway(srv.URL)
	longReceipt := strings.Repeat("r", 64)
	_, err := gw.CreateOrder(context.Background(), 10, "INR", longReceipt)
	require.NoError(t, err)
	assert.Len(t, received.Receipt, 40)
	assert.Equal(t, longReceipt[:40], received.Receipt)
}

func TestGateway_CreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := testGateway(srv.URL)
	order, err := gw.CreateOrder(context.Background(), 10, "INR", "r")
	assert.Error(t, err)
	assert.Nil(t, order)
}

func TestGateway_CreateOrder_RejectsNonPositiveAmount(t *testing.T) {
	gw := testGateway("http://unused.invalid")
	_, err := gw.CreateOrder(context.Background(), 0, "INR", "r")
	assert.Error(t, err)
	_, err = gw.CreateOrder(context.Background(), -5, "INR", "r")
	assert.Error(t, err)
}

func TestGateway_VerifySignature_RoundTrip(t *testing.T) {
	gw := testGateway("http://unused.invalid")

	orderID := "order_abc123"
	paymentID := "pay_def456"
	sig := signFor("test_secret", orderID, paymentID)

	assert.True(t, gw.VerifySignature(orderID, paymentID, sig))
}

func TestGateway_VerifySignature_TamperedInputsFail(t *testing.T) {
	gw := testGateway("http://unused.invalid")

	orderID := "order_abc123"
	paymentID := "pay_def456"
	sig := signFor("test_secret", orderID, paymentID)

	// A single altered character in any of the three inputs must fail
	assert.False(t, gw.VerifySignature("order_abc124", paymentID, sig))
	assert.False(t, gw.VerifySignature(orderID, "pay_def457", sig))
	tampered := []byte(sig)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	assert.False(t, gw.VerifySignature(orderID, paymentID, string(tampered)))

	// Wrong secret on the signing side
	wrongSecret := signFor("other_secret", orderID, paymentID)
	assert.False(t, gw.VerifySignature(orderID, paymentID, wrongSecret))
}
