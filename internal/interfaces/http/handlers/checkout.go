// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/checkout"
	"github.com/your-org/apparel-store/internal/domain/order"
)

// CheckoutHandler prices carts and places cash-on-delivery orders
type CheckoutHandler struct {
	engine   *checkout.Service
	notifier OrderNotifier
	logger   logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(engine *checkout.Service, notifier OrderNotifier, logger logrus.FieldLogger) *CheckoutHandler {
	RegisterValidators()
	return &CheckoutHandler{
		engine:   engine,
		notifier: notifier,
		logger:   logger,
	}
}

// PreviewRequest asks for a priced view of the cart
type PreviewRequest struct {
	CouponCode string `json:"coupon_code" binding:"omitempty,max=50"`
}

// PlaceOrderRequest places a cash-on-delivery order
type PlaceOrderRequest struct {
	ShippingAddress *order.Address `json:"shipping_address"`
	CouponCode      string         `json:"coupon_code" binding:"omitempty,max=50"`
}

// Preview handles POST /checkout/preview
func (h *CheckoutHandler) Preview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req PreviewRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.engine.BuildOrder(c.Request.Context(), checkout.BuildRequest{
		UserID:      userID,
		CouponCode:  req.CouponCode,
		PreviewOnly: true,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order preview calculated",
		"data":    result.Breakdown,
	})
}

// PlaceOrder handles POST /orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.engine.BuildOrder(c.Request.Context(), checkout.BuildRequest{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   order.PaymentMethodCOD,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	notifyOrderPlaced(h.notifier, result.Order)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

func notifyOrderPlaced(notifier OrderNotifier, o *order.Order) {
	if notifier == nil || o == nil {
		return
	}
	placed := *o
	notifier.SendAsync("order_confirmation", func(ctx context.Context) error {
		return notifier.SendOrderConfirmationEmail(ctx, &placed)
	})
}
