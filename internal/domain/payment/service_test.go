package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/checkout"
	"github.com/your-org/apparel-store/internal/domain/coupon"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"github.com/your-org/apparel-store/internal/pkg/logger"
)

const testSecret = "rzp_secret_for_tests"

type fakeGateway struct {
	requests []CreateOrderRequest
	err      error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req CreateOrderRequest) (*RazorpayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.requests = append(g.requests, req)
	return &RazorpayOrder{ID: "order_Abc123", Amount: req.Amount, Currency: req.Currency, Status: "created"}, nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type memoryIntents struct {
	items map[string]Intent
	ttl   time.Duration
}

func newMemoryIntents() *memoryIntents { return &memoryIntents{items: map[string]Intent{}} }

func (m *memoryIntents) Save(_ context.Context, intent Intent, ttl time.Duration) error {
	m.items[intent.GatewayOrderID] = intent
	m.ttl = ttl
	return nil
}

func (m *memoryIntents) Get(_ context.Context, id string) (*Intent, error) {
	intent, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &intent, nil
}

func (m *memoryIntents) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type fakeEngine struct {
	calls []checkout.BuildRequest
	total decimal.Decimal
	code  string
	err   error
}

func (e *fakeEngine) BuildOrder(_ context.Context, req checkout.BuildRequest) (*checkout.Result, error) {
	e.calls = append(e.calls, req)
	if e.err != nil {
		return nil, e.err
	}
	b := checkout.Breakdown{GrandTotal: e.total, Currency: "INR"}
	if e.code != "" {
		b.Coupon = &coupon.Application{Code: e.code, Discount: decimal.NewFromInt(100)}
	}
	if req.PreviewOnly {
		return &checkout.Result{Breakdown: b}, nil
	}
	if req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(e.total) {
		return nil, apperror.New(apperror.CodeAmountMismatch, "order total does not match the amount paid")
	}
	return &checkout.Result{Breakdown: b, Order: &order.Order{ID: 42, OrderNumber: "ORD-1", GrandTotal: e.total}}, nil
}

type fakeRecorder struct {
	payments []*order.Payment
}

func (r *fakeRecorder) RecordPayment(_ context.Context, p *order.Payment) error {
	p.ID = uint(len(r.payments) + 1)
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakeRecorder) Get(_ context.Context, id uint) (*order.Order, error) {
	return &order.Order{ID: id, OrderNumber: "ORD-1", PaymentStatus: order.PaymentStatusPaid}, nil
}

type harness struct {
	svc      *Service
	gateway  *fakeGateway
	intents  *memoryIntents
	engine   *fakeEngine
	recorder *fakeRecorder
}

func newHarness() *harness {
	h := &harness{
		gateway:  &fakeGateway{},
		intents:  newMemoryIntents(),
		engine:   &fakeEngine{total: decimal.RequireFromString("945.00"), code: "FLAT100"},
		recorder: &fakeRecorder{},
	}
	h.svc = NewService(h.gateway, h.intents, h.engine, h.recorder, config.RazorpayConfig{
		KeySecret: testSecret, Currency: "INR", IntentTTL: 15 * time.Minute,
	}, logger.Discard())
	return h
}

func shipTo() *order.Address {
	return &order.Address{FullName: "Asha Rao", AddressLine1: "4 Residency Road", City: "Bengaluru", PostalCode: "560025", Country: "IN"}
}

func TestToPaise(t *testing.T) {
	assert.Equal(t, int64(94500), ToPaise(decimal.RequireFromString("945.00")))
	assert.Equal(t, int64(105), ToPaise(decimal.RequireFromString("1.05")))
	assert.Equal(t, int64(0), ToPaise(decimal.Zero))
}

func TestVerifySignature(t *testing.T) {
	h := newHarness()
	sig := Sign(testSecret, "order_Abc123", "pay_Xyz")

	assert.True(t, h.svc.VerifySignature("order_Abc123", "pay_Xyz", sig))
	assert.False(t, h.svc.VerifySignature("order_Abc123", "pay_Other", sig))
	assert.False(t, h.svc.VerifySignature("order_Abc123", "pay_Xyz", ""))

	altered := []byte(sig)
	if altered[0] == 'a' {
		altered[0] = 'b'
	} else {
		altered[0] = 'a'
	}
	assert.False(t, h.svc.VerifySignature("order_Abc123", "pay_Xyz", string(altered)))
}

func TestInitiateStoresIntent(t *testing.T) {
	h := newHarness()

	res, err := h.svc.Initiate(context.Background(), 7, InitiateRequest{CouponCode: "flat100"})
	require.NoError(t, err)

	assert.Equal(t, "order_Abc123", res.GatewayOrderID)
	assert.Equal(t, int64(94500), res.Amount)
	assert.Equal(t, "rzp_test_key", res.KeyID)

	require.Len(t, h.engine.calls, 1)
	assert.True(t, h.engine.calls[0].PreviewOnly)
	assert.Equal(t, "flat100", h.engine.calls[0].CouponCode)

	require.Len(t, h.gateway.requests, 1)
	assert.Equal(t, int64(94500), h.gateway.requests[0].Amount)
	assert.Equal(t, "7", h.gateway.requests[0].Notes["user_id"])

	intent := h.intents.items["order_Abc123"]
	assert.Equal(t, uint(7), intent.UserID)
	assert.Equal(t, "945.00", intent.Amount.StringFixed(2))
	assert.Equal(t, "FLAT100", intent.CouponCode)
	assert.Equal(t, 15*time.Minute, h.intents.ttl)
}

func TestInitiateFailures(t *testing.T) {
	h := newHarness()
	h.engine.err = apperror.New(apperror.CodeCartEmpty, "cart is empty")
	_, err := h.svc.Initiate(context.Background(), 7, InitiateRequest{})
	assert.Equal(t, apperror.CodeCartEmpty, apperror.CodeOf(err))
	assert.Empty(t, h.gateway.requests)

	h = newHarness()
	h.engine.total = decimal.Zero
	_, err = h.svc.Initiate(context.Background(), 7, InitiateRequest{})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	h = newHarness()
	h.gateway.err = apperror.New(apperror.CodeDependency, "payment gateway unavailable")
	_, err = h.svc.Initiate(context.Background(), 7, InitiateRequest{})
	assert.Equal(t, apperror.CodeDependency, apperror.CodeOf(err))
	assert.Empty(t, h.intents.items)
}

func TestVerifyRejectsBadSignatureWithoutSideEffects(t *testing.T) {
	h := newHarness()
	_, err := h.svc.Initiate(context.Background(), 7, InitiateRequest{CouponCode: "FLAT100"})
	require.NoError(t, err)
	h.engine.calls = nil

	_, err = h.svc.VerifyAndPlaceOrder(context.Background(), 7, VerifyRequest{
		GatewayOrderID:   "order_Abc123",
		GatewayPaymentID: "pay_Xyz",
		Signature:        Sign("wrong-secret", "order_Abc123", "pay_Xyz"),
		ShippingAddress:  shipTo(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidSignature, apperror.CodeOf(err))
	assert.Empty(t, h.engine.calls)
	assert.Empty(t, h.recorder.payments)
	assert.Contains(t, h.intents.items, "order_Abc123")
}

func TestVerifyRequiresOwnIntent(t *testing.T) {
	h := newHarness()
	req := VerifyRequest{
		GatewayOrderID:   "order_Abc123",
		GatewayPaymentID: "pay_Xyz",
		Signature:        Sign(testSecret, "order_Abc123", "pay_Xyz"),
		ShippingAddress:  shipTo(),
	}

	_, err := h.svc.VerifyAndPlaceOrder(context.Background(), 7, req)
	assert.Equal(t, apperror.CodePaymentSessionNotFound, apperror.CodeOf(err))

	_, err = h.svc.Initiate(context.Background(), 7, InitiateRequest{})
	require.NoError(t, err)
	h.engine.calls = nil

	_, err = h.svc.VerifyAndPlaceOrder(context.Background(), 8, req)
	assert.Equal(t, apperror.CodePaymentSessionNotFound, apperror.CodeOf(err))
	assert.Empty(t, h.engine.calls)
}

func TestVerifyAndPlaceOrder(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.Initiate(ctx, 7, InitiateRequest{CouponCode: "flat100"})
	require.NoError(t, err)

	res, err := h.svc.VerifyAndPlaceOrder(ctx, 7, VerifyRequest{
		GatewayOrderID:   "order_Abc123",
		GatewayPaymentID: "pay_Xyz",
		Signature:        Sign(testSecret, "order_Abc123", "pay_Xyz"),
		ShippingAddress:  shipTo(),
	})
	require.NoError(t, err)

	commit := h.engine.calls[len(h.engine.calls)-1]
	assert.False(t, commit.PreviewOnly)
	assert.Equal(t, order.PaymentMethodPrepaid, commit.PaymentMethod)
	assert.Equal(t, "FLAT100", commit.CouponCode)
	require.NotNil(t, commit.ExpectedTotal)
	assert.Equal(t, "945.00", commit.ExpectedTotal.StringFixed(2))

	require.Len(t, h.recorder.payments, 1)
	p := h.recorder.payments[0]
	assert.Equal(t, uint(42), p.OrderID)
	assert.Equal(t, "razorpay", p.Gateway)
	assert.Equal(t, "pay_Xyz", p.GatewayPaymentID)
	assert.Equal(t, "captured", p.Status)
	assert.Equal(t, "945.00", p.Amount.StringFixed(2))

	assert.Equal(t, order.PaymentStatusPaid, res.Order.PaymentStatus)
	assert.Same(t, p, res.Payment)
	assert.NotContains(t, h.intents.items, "order_Abc123")
}

func TestVerifyAmountMismatchRecordsNothing(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.Initiate(ctx, 7, InitiateRequest{})
	require.NoError(t, err)

	// cart changed between initiate and verify
	h.engine.total = decimal.RequireFromString("1050.00")

	_, err = h.svc.VerifyAndPlaceOrder(ctx, 7, VerifyRequest{
		GatewayOrderID:   "order_Abc123",
		GatewayPaymentID: "pay_Xyz",
		Signature:        Sign(testSecret, "order_Abc123", "pay_Xyz"),
		ShippingAddress:  shipTo(),
	})
	assert.Equal(t, apperror.CodeAmountMismatch, apperror.CodeOf(err))
	assert.Empty(t, h.recorder.payments)
	assert.Contains(t, h.intents.items, "order_Abc123")
}

func TestVerifyRejectsDifferentCoupon(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.Initiate(ctx, 7, InitiateRequest{CouponCode: "FLAT100"})
	require.NoError(t, err)

	_, err = h.svc.VerifyAndPlaceOrder(ctx, 7, VerifyRequest{
		GatewayOrderID:   "order_Abc123",
		GatewayPaymentID: "pay_Xyz",
		Signature:        Sign(testSecret, "order_Abc123", "pay_Xyz"),
		ShippingAddress:  shipTo(),
		CouponCode:       "OTHER",
	})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Empty(t, h.recorder.payments)
}

func TestVerifyPropagatesEngineFailure(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.Initiate(ctx, 7, InitiateRequest{})
	require.NoError(t, err)

	h.engine.err = apperror.New(apperror.CodeInsufficientStock, "insufficient stock for SKU CT-BLK-M")
	_, err = h.svc.VerifyAndPlaceOrder(ctx, 7, VerifyRequest{
		GatewayOrderID:   "order_Abc123",
		GatewayPaymentID: "pay_Xyz",
		Signature:        Sign(testSecret, "order_Abc123", "pay_Xyz"),
		ShippingAddress:  shipTo(),
	})
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.CodeOf(err))
	assert.Empty(t, h.recorder.payments)
}
