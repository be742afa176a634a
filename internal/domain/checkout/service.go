// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/cart"
	"github.com/your-org/apparel-store/internal/domain/coupon"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/domain/tax"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"github.com/your-org/apparel-store/internal/pkg/metrics"
	"gorm.io/gorm"
)

// CouponEvaluator resolves a coupon code against a subtotal
type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (*coupon.Application, error)
}

// UserDirectory resolves the email an order snapshot is addressed to
type UserDirectory interface {
	GetEmail(ctx context.Context, userID uint) (string, error)
}

// Dependencies wires the stores the pricing engine reads from and writes to
type Dependencies struct {
	Carts    cart.Store
	Catalog  product.Catalog
	Coupons  CouponEvaluator
	Users    UserDirectory
	Orders   order.Store
	Tax      *tax.Calculator
	Metrics  *metrics.OrderMetrics
	Logger   *logrus.Logger
	Currency string
}

// Service is the order pricing engine shared by preview and commit
type Service struct {
	db       *gorm.DB
	carts    cart.Store
	catalog  product.Catalog
	coupons  CouponEvaluator
	users    UserDirectory
	orders   order.Store
	tax      *tax.Calculator
	metrics  *metrics.OrderMetrics
	logger   *logrus.Logger
	currency string
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	currency := deps.Currency
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		db:       db,
		carts:    deps.Carts,
		catalog:  deps.Catalog,
		coupons:  deps.Coupons,
		users:    deps.Users,
		orders:   deps.Orders,
		tax:      deps.Tax,
		metrics:  deps.Metrics,
		logger:   logger,
		currency: currency,
	}
}

// BuildRequest represents one preview or commit of the caller's cart
type BuildRequest struct {
	UserID          uint
	ShippingAddress *order.Address
	PaymentMethod   order.PaymentMethod
	CouponCode      string
	PreviewOnly     bool
	// ExpectedTotal, when set on commit, must equal the recomputed grand total
	ExpectedTotal *decimal.Decimal
}

// Line is one priced cart line
type Line struct {
	ProductID uint            `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	MRP       decimal.Decimal `json:"mrp"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Breakdown is the priced view of a cart
type Breakdown struct {
	Items         []Line              `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Coupon        *coupon.Application `json:"coupon,omitempty"`
	Taxable       decimal.Decimal     `json:"taxable_amount"`
	CGST          decimal.Decimal     `json:"cgst"`
	SGST          decimal.Decimal     `json:"sgst"`
	TotalTax      decimal.Decimal     `json:"total_tax"`
	GrandTotal    decimal.Decimal     `json:"grand_total"`
	TaxComponents []tax.Component     `json:"tax_components"`
	Currency      string              `json:"currency"`
}

// Result carries the breakdown and, on commit, the persisted order
type Result struct {
	Breakdown Breakdown    `json:"breakdown"`
	Order     *order.Order `json:"order,omitempty"`
}

// BuildOrder prices the caller's cart. In preview mode nothing is written.
// On commit the order is persisted, every line's stock is decremented and the
// cart is deleted inside one transaction.
func (s *Service) BuildOrder(ctx context.Context, req BuildRequest) (*Result, error) {
	result, err := s.buildOrder(ctx, req)
	if err != nil {
		s.recordFailure(req, err)
		return nil, err
	}
	return result, nil
}

func (s *Service) buildOrder(ctx context.Context, req BuildRequest) (*Result, error) {
	if !req.PreviewOnly {
		if !req.ShippingAddress.IsPresent() {
			return nil, apperror.New(apperror.CodeMissingShippingAddress, "shipping address is required")
		}
		if !req.PaymentMethod.Valid() {
			return nil, apperror.Newf(apperror.CodeValidation, "unsupported payment method %q", req.PaymentMethod)
		}
	}

	c, err := s.carts.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsEmpty() {
		return nil, apperror.New(apperror.CodeCartEmpty, "cart is empty")
	}

	breakdown := Breakdown{
		Items:    make([]Line, 0, len(c.Items)),
		Subtotal: c.Subtotal(),
		Currency: s.currency,
	}

	// Prices stay as captured at add-to-cart; the catalog is only used to re-validate.
	for _, item := range c.Items {
		if err := s.checkAvailability(ctx, item); err != nil {
			return nil, err
		}
		breakdown.Items = append(breakdown.Items, Line{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			Size:      item.Size,
			Color:     item.Color,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			Price:     item.Price,
			MRP:       item.MRP,
			LineTotal: item.LineTotal(),
		})
	}

	breakdown.Discount = decimal.Zero
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		applied, err := s.coupons.Evaluate(ctx, code, breakdown.Subtotal)
		if err != nil {
			return nil, err
		}
		breakdown.Coupon = applied
		breakdown.Discount = applied.Discount
	}

	breakdown.Taxable = breakdown.Subtotal.Sub(breakdown.Discount)
	taxes := s.tax.Calculate(breakdown.Taxable)
	breakdown.CGST = taxes.CGST
	breakdown.SGST = taxes.SGST
	breakdown.TotalTax = taxes.Total
	breakdown.TaxComponents = s.tax.Components(taxes)
	breakdown.GrandTotal = tax.Round2(breakdown.Taxable.Add(taxes.Total))

	if req.PreviewOnly {
		s.metrics.IncPreview(breakdown.Coupon != nil)
		return &Result{Breakdown: breakdown}, nil
	}

	if req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(breakdown.GrandTotal) {
		return nil, apperror.Newf(apperror.CodeAmountMismatch,
			"order total %s does not match the amount paid %s",
			breakdown.GrandTotal.StringFixed(2), req.ExpectedTotal.StringFixed(2))
	}

	email, err := s.users.GetEmail(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	o := s.snapshot(req, email, breakdown)
	if err := s.commit(ctx, req.UserID, o); err != nil {
		return nil, err
	}

	s.metrics.ObserveCommit(string(o.PaymentMethod), o.GrandTotal.InexactFloat64())
	s.logger.WithFields(logrus.Fields{
		"order_number":   o.OrderNumber,
		"user_id":        o.UserID,
		"payment_method": o.PaymentMethod,
		"grand_total":    o.GrandTotal.StringFixed(2),
	}).Info("Order placed")

	return &Result{Breakdown: breakdown, Order: o}, nil
}

// checkAvailability fails on the first line whose product, SKU or stock is gone
func (s *Service) checkAvailability(ctx context.Context, item cart.CartItem) error {
	p, err := s.catalog.GetProduct(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.Newf(apperror.CodeProductMissing, "product for SKU %s is no longer available", item.SKU)
	}
	_, size, ok := p.FindSize(item.SKU)
	if !ok {
		return apperror.Newf(apperror.CodeInvalidSKU, "invalid SKU %s for product %s", item.SKU, p.Name)
	}
	if size.Stock < item.Quantity {
		return apperror.Newf(apperror.CodeInsufficientStock, "insufficient stock for SKU %s", item.SKU)
	}
	return nil
}

func (s *Service) snapshot(req BuildRequest, email string, b Breakdown) *order.Order {
	o := &order.Order{
		UserID:          req.UserID,
		Email:           email,
		Status:          order.OrderStatusPlaced,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   order.PaymentStatusPending,
		Subtotal:        b.Subtotal,
		Discount:        b.Discount,
		CGST:            b.CGST,
		SGST:            b.SGST,
		TotalTax:        b.TotalTax,
		GrandTotal:      b.GrandTotal,
		Currency:        b.Currency,
		ShippingAddress: *req.ShippingAddress,
		Items:           make([]order.OrderItem, 0, len(b.Items)),
	}
	if b.Coupon != nil {
		code := b.Coupon.Code
		o.CouponCode = &code
		o.CouponDiscount = decimal.NewNullDecimal(b.Coupon.Discount)
	}
	for _, line := range b.Items {
		o.Items = append(o.Items, order.OrderItem{
			ProductID: line.ProductID,
			SKU:       line.SKU,
			Name:      line.Name,
			Size:      line.Size,
			Color:     line.Color,
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
			Price:     line.Price,
			MRP:       line.MRP,
			LineTotal: line.LineTotal,
		})
	}
	return o
}

// commit persists the order, decrements stock in cart order and deletes the cart.
// A failed conditional decrement rolls all of it back.
func (s *Service) commit(ctx context.Context, userID uint, o *order.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, o); err != nil {
			return err
		}

		stock := s.catalog.WithTx(tx)
		for _, item := range o.Items {
			if err := stock.DecrementStock(ctx, item.ProductID, item.SKU, item.Quantity); err != nil {
				return err
			}
		}

		return s.carts.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return err
		}
		return apperror.Wrap(apperror.CodeInternal, err, "failed to place order")
	}
	return nil
}

func (s *Service) recordFailure(req BuildRequest, err error) {
	code := apperror.CodeOf(err)
	s.metrics.IncFailure(string(code))

	entry := s.logger.WithFields(logrus.Fields{
		"user_id":      req.UserID,
		"preview_only": req.PreviewOnly,
		"code":         code,
	})
	if apperror.IsUserFacing(err) {
		entry.Debug(err.Error())
		return
	}
	entry.WithError(err).Error("Order build failed")
}
