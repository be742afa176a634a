package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/cart"
	"github.com/your-org/apparel-store/internal/domain/checkout"
	"github.com/your-org/apparel-store/internal/domain/coupon"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/domain/payment"
	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/domain/tax"
	"github.com/your-org/apparel-store/internal/domain/user"
	"github.com/your-org/apparel-store/internal/infrastructure/database/postgres"
	"github.com/your-org/apparel-store/internal/interfaces/http/middleware"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"github.com/your-org/apparel-store/internal/pkg/metrics"
	"github.com/your-org/apparel-store/internal/pkg/testdb"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *recordingNotifier) SendOrderConfirmationEmail(_ context.Context, o *order.Order) error {
	n.record("confirmation:" + o.OrderNumber)
	return nil
}

func (n *recordingNotifier) SendOrderStatusUpdateEmail(_ context.Context, o *order.Order) error {
	n.record("status:" + string(o.Status))
	return nil
}

// SendAsync runs inline so assertions see the result
func (n *recordingNotifier) SendAsync(_ string, fn func(ctx context.Context) error) {
	_ = fn(context.Background())
}

func (n *recordingNotifier) record(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, s)
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

type stubRenderer struct{}

func (stubRenderer) GenerateInvoice(o *order.Order) ([]byte, error) {
	return []byte("%PDF-1.4 " + o.OrderNumber), nil
}

type fixture struct {
	router   *gin.Engine
	catalog  *product.Service
	carts    *cart.Service
	notifier *recordingNotifier
	buyer    uint
	other    uint
	admin    uint
	product  *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db := testdb.Open(t, postgres.Models()...)
	catalog := product.NewService(db)
	carts := cart.NewService(db, catalog)
	coupons := coupon.NewService(db)
	users := user.NewService(db)
	orders := order.NewService(db, catalog)

	buyer, err := users.Create(ctx, "buyer@example.com", "s3cret-pass", "Asha", "Rao", false, bcrypt.MinCost)
	require.NoError(t, err)
	other, err := users.Create(ctx, "other@example.com", "s3cret-pass", "Ravi", "K", false, bcrypt.MinCost)
	require.NoError(t, err)
	admin, err := users.Create(ctx, "admin@example.com", "s3cret-pass", "Admin", "User", true, bcrypt.MinCost)
	require.NoError(t, err)

	p, err := catalog.CreateProduct(ctx, &product.ProductCreateRequest{
		Name:     "Cotton Tee",
		Category: "t-shirts",
		Variants: []product.VariantInput{{Color: "Black", Sizes: []product.SizeInput{
			{Label: "M", SKU: "CT-BLK-M", MRP: decimal.NewFromInt(1200), Price: decimal.NewFromInt(1000), Stock: 5},
			{Label: "L", SKU: "CT-BLK-L", MRP: decimal.NewFromInt(600), Price: decimal.NewFromInt(499), Stock: 4},
		}}},
	})
	require.NoError(t, err)

	logger, _ := logtest.NewNullLogger()
	engine := checkout.NewService(db, checkout.Dependencies{
		Carts:    carts,
		Catalog:  catalog,
		Coupons:  coupons,
		Users:    users,
		Orders:   orders,
		Tax:      tax.NewCalculator(decimal.RequireFromString("2.5"), decimal.RequireFromString("2.5")),
		Metrics:  metrics.NewOrderMetrics(prometheus.NewRegistry()),
		Logger:   logger,
		Currency: "INR",
	})
	payments := payment.NewService(nil, nil, engine, orders, config.RazorpayConfig{KeySecret: "test-secret"}, logger)

	notifier := &recordingNotifier{}
	f := &fixture{
		catalog: catalog, carts: carts, notifier: notifier,
		buyer: buyer.ID, other: other.ID, admin: admin.ID, product: p,
	}

	productHandler := NewProductHandler(catalog, logger)
	cartHandler := NewCartHandler(carts, logger)
	checkoutHandler := NewCheckoutHandler(engine, notifier, logger)
	paymentHandler := NewPaymentHandler(payments, notifier, logger)
	orderHandler := NewOrderHandler(orders, notifier, logger)
	invoiceHandler := NewInvoiceHandler(orders, stubRenderer{}, logger)
	couponHandler := NewCouponHandler(coupons, logger)

	r := gin.New()
	r.GET("/products", productHandler.GetProducts)
	r.GET("/products/:id", productHandler.GetProduct)

	authed := r.Group("", testIdentity)
	authed.GET("/cart", cartHandler.GetCart)
	authed.POST("/cart/items", cartHandler.AddToCart)
	authed.DELETE("/cart/items/:sku", cartHandler.RemoveFromCart)
	authed.DELETE("/cart", cartHandler.ClearCart)
	authed.POST("/checkout/preview", checkoutHandler.Preview)
	authed.POST("/orders", checkoutHandler.PlaceOrder)
	authed.GET("/orders", orderHandler.GetOrders)
	authed.GET("/orders/:id", orderHandler.GetOrder)
	authed.GET("/orders/:id/invoice", invoiceHandler.GenerateInvoice)
	authed.POST("/payments/verify", paymentHandler.VerifyPayment)

	staff := authed.Group("/admin", middleware.AdminMiddleware())
	staff.GET("/products", productHandler.AdminGetProducts)
	staff.PUT("/products/:id", productHandler.UpdateProduct)
	staff.PUT("/products/:id/sizes/:sku", productHandler.UpdateSize)
	staff.POST("/coupons", couponHandler.CreateCoupon)
	staff.GET("/coupons", couponHandler.GetCoupons)
	staff.GET("/orders", orderHandler.AdminGetOrders)
	staff.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
	staff.PUT("/orders/:id/payment", orderHandler.MarkOrderPaid)
	staff.DELETE("/orders/:id", orderHandler.DeleteOrder)

	f.router = r
	return f
}

// testIdentity stands in for the JWT middleware
func testIdentity(c *gin.Context) {
	if id, err := strconv.ParseUint(c.GetHeader("X-Test-User"), 10, 32); err == nil {
		c.Set(middleware.ContextUserID, uint(id))
		c.Set(middleware.ContextIsAdmin, c.GetHeader("X-Test-Admin") == "true")
	}
	c.Next()
}

type response struct {
	Code int
	Body map[string]any
	Raw  *httptest.ResponseRecorder
}

func (f *fixture) do(t *testing.T, method, path string, userID uint, body any) response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
		req.Header.Set("X-Test-Admin", strconv.FormatBool(userID == f.admin))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	resp := response{Code: w.Code, Raw: w}
	if w.Header().Get("Content-Type") != "application/pdf" && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}
	return resp
}

func (r response) data(t *testing.T) map[string]any {
	t.Helper()
	data, ok := r.Body["data"].(map[string]any)
	require.True(t, ok, "missing data in %v", r.Body)
	return data
}

func money(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected decimal string, got %T", v)
	return decimal.RequireFromString(s)
}

var shipTo = map[string]any{
	"full_name":     "Asha Rao",
	"address_line1": "12 MG Road",
	"city":          "Bengaluru",
	"state":         "KA",
	"postal_code":   "560001",
	"phone":         "9876543210",
}

func (f *fixture) addToCart(t *testing.T, userID uint, sku string, qty int) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/cart/items", userID, map[string]any{
		"product_id": f.product.ID, "sku": sku, "quantity": qty,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
}

func TestCartEndpoints(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/cart", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.data(t)["items"])

	f.addToCart(t, f.buyer, "CT-BLK-M", 2)
	f.addToCart(t, f.buyer, "CT-BLK-L", 1)

	resp = f.do(t, http.MethodGet, "/cart", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.data(t)
	assert.Len(t, data["items"], 2)
	totals := data["totals"].(map[string]any)
	assert.True(t, money(t, totals["sub_total"]).Equal(decimal.NewFromInt(2499)))

	resp = f.do(t, http.MethodDelete, "/cart/items/CT-BLK-L", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.data(t)["items"], 1)

	resp = f.do(t, http.MethodDelete, "/cart/items/CT-BLK-L", f.buyer, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", resp.Body["code"])

	resp = f.do(t, http.MethodDelete, "/cart", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	c, err := f.carts.Get(context.Background(), f.buyer)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCartRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/cart/items", f.buyer, map[string]any{"sku": "CT-BLK-M"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Body["code"])
	details := resp.Body["details"].(map[string]any)
	assert.Equal(t, "is required", details["product_id"])

	resp = f.do(t, http.MethodPost, "/cart/items", f.buyer, map[string]any{
		"product_id": f.product.ID, "sku": "CT-BLK-M", "quantity": 9,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Body["code"])
	assert.Equal(t, "insufficient stock for SKU CT-BLK-M", resp.Body["error"])

	resp = f.do(t, http.MethodGet, "/cart", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/checkout/preview", f.buyer, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "CART_EMPTY", resp.Body["code"])
	assert.Equal(t, "cart is empty", resp.Body["error"])

	f.addToCart(t, f.buyer, "CT-BLK-M", 1)

	resp = f.do(t, http.MethodPost, "/checkout/preview", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	data := resp.data(t)
	assert.True(t, money(t, data["subtotal"]).Equal(decimal.NewFromInt(1000)))
	assert.True(t, money(t, data["cgst"]).Equal(decimal.NewFromInt(25)))
	assert.True(t, money(t, data["grand_total"]).Equal(decimal.NewFromInt(1050)))

	resp = f.do(t, http.MethodPost, "/checkout/preview", f.buyer, map[string]any{"coupon_code": "NOPE"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INVALID_COUPON", resp.Body["code"])

	assert.Empty(t, f.notifier.messages())
}

func TestPlaceOrderFlow(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.buyer, "CT-BLK-M", 2)

	resp := f.do(t, http.MethodPost, "/orders", f.buyer, map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "MISSING_SHIPPING_ADDRESS", resp.Body["code"])

	badPin := map[string]any{"address_line1": "12 MG Road", "city": "Bengaluru", "postal_code": "0123"}
	resp = f.do(t, http.MethodPost, "/orders", f.buyer, map[string]any{"shipping_address": badPin})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	details := resp.Body["details"].(map[string]any)
	assert.Equal(t, "must be a 6 digit PIN code", details["postal_code"])

	resp = f.do(t, http.MethodPost, "/orders", f.buyer, map[string]any{"shipping_address": shipTo})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	placed := resp.data(t)["order"].(map[string]any)
	orderNumber := placed["order_number"].(string)
	orderID := uint(placed["id"].(float64))
	assert.Equal(t, "cod", placed["payment_method"])
	assert.Equal(t, "pending", placed["payment_status"])
	assert.True(t, money(t, placed["grand_total"]).Equal(decimal.NewFromInt(2100)))
	assert.Equal(t, []string{"confirmation:" + orderNumber}, f.notifier.messages())

	c, err := f.carts.Get(context.Background(), f.buyer)
	require.NoError(t, err)
	assert.Nil(t, c)

	resp = f.do(t, http.MethodGet, "/orders", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.data(t)["orders"], 1)

	path := "/orders/" + strconv.Itoa(int(orderID))
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, path, f.buyer, nil).Code)

	resp = f.do(t, http.MethodGet, path, f.other, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = f.do(t, http.MethodGet, path+"/invoice", f.buyer, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Raw.Header().Get("Content-Type"))
	assert.Contains(t, resp.Raw.Header().Get("Content-Disposition"), "invoice-"+orderNumber+".pdf")
	assert.Contains(t, resp.Raw.Body.String(), orderNumber)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path+"/invoice", f.other, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/orders/abc", f.buyer, nil).Code)
}

func TestPlaceOrderStockChangedAfterCartAdd(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.buyer, "CT-BLK-M", 3)

	stock := 1
	resp := f.do(t, http.MethodPut, "/admin/products/"+strconv.Itoa(int(f.product.ID))+"/sizes/CT-BLK-M", f.admin, map[string]any{"stock": stock})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	resp = f.do(t, http.MethodPost, "/orders", f.buyer, map[string]any{"shipping_address": shipTo})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Body["code"])
	assert.Equal(t, "insufficient stock for SKU CT-BLK-M", resp.Body["error"])
	assert.Empty(t, f.notifier.messages())

	c, err := f.carts.Get(context.Background(), f.buyer)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Items, 1)
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/payments/verify", f.buyer, map[string]any{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
		"shipping_address":    shipTo,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "INVALID_SIGNATURE", resp.Body["code"])

	resp = f.do(t, http.MethodPost, "/payments/verify", f.buyer, map[string]any{"razorpay_order_id": "order_1"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	details := resp.Body["details"].(map[string]any)
	assert.Contains(t, details, "razorpay_signature")
}

func TestAdminOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.buyer, "CT-BLK-L", 1)

	resp := f.do(t, http.MethodPost, "/orders", f.buyer, map[string]any{"shipping_address": shipTo})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	path := "/admin/orders/" + strconv.Itoa(int(resp.data(t)["order"].(map[string]any)["id"].(float64)))

	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/admin/orders", f.buyer, nil).Code)

	resp = f.do(t, http.MethodGet, "/admin/orders?status=placed", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.data(t)["orders"], 1)

	resp = f.do(t, http.MethodPut, path+"/status", f.admin, map[string]any{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "STATE_CONFLICT", resp.Body["code"])

	resp = f.do(t, http.MethodPut, path+"/status", f.admin, map[string]any{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(t, http.MethodPut, path+"/status", f.admin, map[string]any{"status": "confirmed", "comment": "packed"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, "confirmed", resp.data(t)["status"])
	assert.Contains(t, f.notifier.messages(), "status:confirmed")

	resp = f.do(t, http.MethodPut, path+"/payment", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, "paid", resp.data(t)["payment_status"])

	resp = f.do(t, http.MethodPut, path+"/payment", f.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, path, f.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, path, f.admin, nil).Code)
}

func TestProductVisibility(t *testing.T) {
	f := newFixture(t)
	path := "/products/" + strconv.Itoa(int(f.product.ID))

	resp := f.do(t, http.MethodGet, path, 0, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Cotton Tee", resp.data(t)["name"])

	inactive := false
	resp = f.do(t, http.MethodPut, "/admin/products/"+strconv.Itoa(int(f.product.ID)), f.admin, map[string]any{"is_active": inactive})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, 0, nil).Code)

	resp = f.do(t, http.MethodGet, "/products", 0, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.data(t)["products"])

	resp = f.do(t, http.MethodGet, "/admin/products", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.data(t)["products"], 1)
}

func TestAdminCoupons(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{
		"code":           "fest10",
		"discount_type":  "percentage",
		"value":          "10",
		"min_cart_value": "500",
		"expires_at":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}

	resp := f.do(t, http.MethodPost, "/admin/coupons", f.admin, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	assert.Equal(t, "FEST10", resp.data(t)["code"])

	resp = f.do(t, http.MethodPost, "/admin/coupons", f.admin, body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "coupon FEST10 already exists", resp.Body["error"])

	body["discount_type"] = "bogo"
	resp = f.do(t, http.MethodPost, "/admin/coupons", f.admin, body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	f.addToCart(t, f.buyer, "CT-BLK-M", 1)
	resp = f.do(t, http.MethodPost, "/checkout/preview", f.buyer, map[string]any{"coupon_code": "fest10"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.True(t, money(t, resp.data(t)["discount"]).Equal(decimal.NewFromInt(100)))
}

func TestRespondErrorMasksSystemFailures(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	respondError(c, logger, apperror.Wrap(apperror.CodeInternal, errors.New("pq: relation does not exist"), "failed to list orders"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	hook.Reset()
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	respondError(c, logger, apperror.New(apperror.CodeCouponExpired, "coupon FEST10 has expired"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"coupon FEST10 has expired","code":"COUPON_EXPIRED"}`, w.Body.String())
	assert.Empty(t, hook.AllEntries())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	respondError(c, logger, context.DeadlineExceeded)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type checker struct{ err error }

func (c checker) Health() error { return c.err }

func TestReadiness(t *testing.T) {
	r := gin.New()
	ok := NewHealthHandler("1.0.0", "test", map[string]HealthChecker{"postgres": checker{}, "redis": checker{}})
	down := NewHealthHandler("1.0.0", "test", map[string]HealthChecker{"postgres": checker{}, "redis": checker{errors.New("refused")}})
	r.GET("/health", ok.Health)
	r.GET("/ready", ok.Ready)
	r.GET("/ready-down", down.Ready)

	for path, want := range map[string]int{"/health": 200, "/ready": 200, "/ready-down": 503} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready-down", nil))
	assert.JSONEq(t, `{"postgres":"ok","redis":"unavailable"}`, mustField(t, w.Body.Bytes(), "checks"))
}

func mustField(t *testing.T, raw []byte, key string) string {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &body))
	return string(body[key])
}
