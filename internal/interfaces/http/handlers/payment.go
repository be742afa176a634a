// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/payment"
)

// PaymentHandler handles prepaid checkout with the payment gateway
type PaymentHandler struct {
	paymentService *payment.Service
	notifier       OrderNotifier
	logger         logrus.FieldLogger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, notifier OrderNotifier, logger logrus.FieldLogger) *PaymentHandler {
	RegisterValidators()
	return &PaymentHandler{
		paymentService: paymentService,
		notifier:       notifier,
		logger:         logger,
	}
}

// InitiatePayment handles POST /payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req payment.InitiateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.paymentService.Initiate(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment initiated",
		"data":    resp,
	})
}

// VerifyPayment handles POST /payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req payment.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.paymentService.VerifyAndPlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	notifyOrderPlaced(h.notifier, resp.Order)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment verified and order placed",
		"data":    resp,
	})
}
