package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/payment"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
)

// PaymentHandler exposes the two-step payment flow: create a gateway order,
// then verify the signature the gateway handed to the client.
type PaymentHandler struct {
	gateway payment.IGateway
	intents services.IPaymentIntentService
	cfg     *config.Config
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(gateway payment.IGateway, intents services.IPaymentIntentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, intents: intents, cfg: cfg}
}

type createOrderRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

// CreateOrder handles POST /createorder. The amount arrives in major currency
// units; the adapter converts on the wire. A payment intent is recorded so the
// order can later be verified and consumed by exactly one booking.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	if req.Currency == "" {
		req.Currency = h.cfg.DefaultCurrency
	}

	order, err := h.gateway.CreateOrder(c.Request.Context(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		log.Printf("Order creation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment order"})
		return
	}

	if _, err := h.intents.Create(c.Request.Context(), userID, order.ID, order.Amount, order.Currency, order.Receipt); err != nil {
		log.Printf("Failed to record payment intent for order %s: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

type verifyOrderRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// VerifyOrder handles POST /verifyorder. A valid signature answers
// {"status":"success"} and promotes the intent to verified; anything else is a
// 400 {"status":"failure"}.
func (h *PaymentHandler) VerifyOrder(c *gin.Context) {
	var req verifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "failure"})
		return
	}

	if !h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "failure"})
		return
	}

	if _, err := h.intents.MarkVerified(c.Request.Context(), req.OrderID, req.PaymentID); err != nil {
		// Signature checked out but the order is unknown or already settled
		log.Printf("Verified signature for unusable order %s: %v", req.OrderID, err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "failure"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
