// internal/domain/payment/service.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/checkout"
	"github.com/your-org/apparel-store/internal/domain/coupon"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
)

const gatewayName = "razorpay"

// OrderBuilder is the pricing engine entry point
type OrderBuilder interface {
	BuildOrder(ctx context.Context, req checkout.BuildRequest) (*checkout.Result, error)
}

// PaymentRecorder persists verified payments against orders
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, p *order.Payment) error
	Get(ctx context.Context, id uint) (*order.Order, error)
}

// Service runs the prepaid checkout path
type Service struct {
	gateway   Gateway
	intents   IntentStore
	engine    OrderBuilder
	orders    PaymentRecorder
	keySecret string
	currency  string
	intentTTL time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

// NewService creates a new payment service
func NewService(gateway Gateway, intents IntentStore, engine OrderBuilder, orders PaymentRecorder, cfg config.RazorpayConfig, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	ttl := cfg.IntentTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		gateway:   gateway,
		intents:   intents,
		engine:    engine,
		orders:    orders,
		keySecret: cfg.KeySecret,
		currency:  currency,
		intentTTL: ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// InitiateRequest starts a prepaid checkout
type InitiateRequest struct {
	CouponCode string `json:"coupon_code"`
}

// InitiateResponse is everything the client needs to open the gateway widget
type InitiateResponse struct {
	GatewayOrderID string             `json:"razorpay_order_id"`
	Amount         int64              `json:"amount"`
	Currency       string             `json:"currency"`
	KeyID          string             `json:"key_id"`
	Breakdown      checkout.Breakdown `json:"breakdown"`
}

// VerifyRequest is the gateway callback triple plus the shipping details
type VerifyRequest struct {
	GatewayOrderID   string         `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string         `json:"razorpay_payment_id" binding:"required"`
	Signature        string         `json:"razorpay_signature" binding:"required"`
	ShippingAddress  *order.Address `json:"shipping_address"`
	CouponCode       string         `json:"coupon_code"`
}

// VerifyResponse carries the placed order and its payment
type VerifyResponse struct {
	Order   *order.Order   `json:"order"`
	Payment *order.Payment `json:"payment"`
}

// Initiate prices the cart server-side, creates the gateway order for that
// amount and remembers the amount under the gateway order id.
func (s *Service) Initiate(ctx context.Context, userID uint, req InitiateRequest) (*InitiateResponse, error) {
	preview, err := s.engine.BuildOrder(ctx, checkout.BuildRequest{
		UserID:      userID,
		CouponCode:  req.CouponCode,
		PreviewOnly: true,
	})
	if err != nil {
		return nil, err
	}

	total := preview.Breakdown.GrandTotal
	amount := ToPaise(total)
	if amount <= 0 {
		return nil, apperror.New(apperror.CodeValidation, "order total must be greater than zero for online payment")
	}

	couponCode := ""
	if preview.Breakdown.Coupon != nil {
		couponCode = preview.Breakdown.Coupon.Code
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, CreateOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  fmt.Sprintf("rcpt_%d_%d", userID, s.now().Unix()),
		Notes: map[string]string{
			"user_id": fmt.Sprintf("%d", userID),
		},
	})
	if err != nil {
		return nil, err
	}

	err = s.intents.Save(ctx, Intent{
		GatewayOrderID: gatewayOrder.ID,
		UserID:         userID,
		Amount:         total,
		Currency:       s.currency,
		CouponCode:     couponCode,
		CreatedAt:      s.now().UTC(),
	}, s.intentTTL)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":          userID,
		"gateway_order_id": gatewayOrder.ID,
		"amount":           total.StringFixed(2),
	}).Info("Payment initiated")

	return &InitiateResponse{
		GatewayOrderID: gatewayOrder.ID,
		Amount:         amount,
		Currency:       s.currency,
		KeyID:          s.gateway.KeyID(),
		Breakdown:      preview.Breakdown,
	}, nil
}

// VerifySignature checks the gateway signature over orderID|paymentID
func (s *Service) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Sign(s.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyAndPlaceOrder checks the signature, then commits the cart as a prepaid
// order for exactly the amount the gateway order was created with.
func (s *Service) VerifyAndPlaceOrder(ctx context.Context, userID uint, req VerifyRequest) (*VerifyResponse, error) {
	if !s.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return nil, apperror.New(apperror.CodeInvalidSignature, "invalid payment signature")
	}

	intent, err := s.intents.Get(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if intent == nil || intent.UserID != userID {
		return nil, apperror.New(apperror.CodePaymentSessionNotFound, "payment session not found or expired")
	}
	if code := coupon.NormalizeCode(req.CouponCode); code != "" && code != intent.CouponCode {
		return nil, apperror.New(apperror.CodeValidation, "coupon does not match the payment session")
	}

	expected := intent.Amount
	result, err := s.engine.BuildOrder(ctx, checkout.BuildRequest{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   order.PaymentMethodPrepaid,
		CouponCode:      intent.CouponCode,
		ExpectedTotal:   &expected,
	})
	if err != nil {
		return nil, err
	}

	p := &order.Payment{
		OrderID:          result.Order.ID,
		UserID:           userID,
		Gateway:          gatewayName,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
		Amount:           intent.Amount,
		Currency:         intent.Currency,
		Status:           "captured",
	}
	if err := s.orders.RecordPayment(ctx, p); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_number":       result.Order.OrderNumber,
			"gateway_payment_id": req.GatewayPaymentID,
		}).Error("Order placed but payment could not be recorded")
		return nil, err
	}

	if err := s.intents.Delete(ctx, req.GatewayOrderID); err != nil {
		s.logger.WithError(err).WithField("gateway_order_id", req.GatewayOrderID).Warn("Failed to delete payment intent")
	}

	placed, err := s.orders.Get(ctx, result.Order.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number":       placed.OrderNumber,
		"gateway_payment_id": p.GatewayPaymentID,
	}).Info("Prepaid order placed")

	return &VerifyResponse{Order: placed, Payment: p}, nil
}

// ToPaise converts rupees to the smallest currency unit
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Sign computes the signature the gateway sends for orderID|paymentID
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join([]string{orderID, paymentID}, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
