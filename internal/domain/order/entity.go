// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethod is the closed set of checkout paths
type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodPrepaid PaymentMethod = "prepaid"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodPrepaid
}

// Order is the immutable snapshot created when a cart is committed
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Email         string        `gorm:"not null;size:255" json:"email"`
	Status        OrderStatus   `gorm:"not null;size:20;index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"not null;size:20" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"not null;size:20" json:"payment_status"`

	// Financial Information
	Subtotal       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"discount"`
	CouponCode     *string             `gorm:"size:50" json:"coupon_code"`
	CouponDiscount decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"coupon_discount"`
	CGST           decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"cgst"`
	SGST           decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"sgst"`
	TotalTax       decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"total_tax"`
	GrandTotal     decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	Currency       string              `gorm:"size:3;not null" json:"currency"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	// Timestamps
	PaidAt      *time.Time `json:"paid_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Payments      []Payment            `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a copied line item; later product edits never change it
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	SKU       string          `gorm:"not null;size:100" json:"sku"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Size      string          `gorm:"size:20" json:"size"`
	Color     string          `gorm:"size:100" json:"color"`
	ImageURL  string          `gorm:"size:500" json:"image_url"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	MRP       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"mrp"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
}

// Payment records one verified gateway payment for a prepaid order
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"not null;index" json:"order_id"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	Gateway          string          `gorm:"not null;size:50" json:"gateway"`
	GatewayOrderID   string          `gorm:"not null;size:100;index" json:"gateway_order_id"`
	GatewayPaymentID string          `gorm:"uniqueIndex;not null;size:100" json:"gateway_payment_id"`
	Signature        string          `gorm:"size:255" json:"-"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Status           string          `gorm:"not null;size:20" json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;size:20" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy uint        `gorm:"index" json:"created_by"` // 0 for system changes
	CreatedAt time.Time   `json:"created_at"`
}

// Address is the flat shipping address snapshot embedded in Order
type Address struct {
	FullName     string `gorm:"size:200" json:"full_name"`
	Phone        string `gorm:"size:20" json:"phone" binding:"max=20"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code" binding:"omitempty,pincode"`
	Country      string `gorm:"size:2" json:"country" binding:"omitempty,len=2"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (Payment) TableName() string            { return "payments" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// IsPresent reports whether the address carries the fields needed to ship
func (a *Address) IsPresent() bool {
	if a == nil {
		return false
	}
	return strings.TrimSpace(a.AddressLine1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.PostalCode) != ""
}

// Lines returns the non-empty address lines for display
func (a Address) Lines() []string {
	lines := []string{}
	for _, l := range []string{
		a.FullName,
		a.AddressLine1,
		a.AddressLine2,
		joinNonEmpty(a.City, a.State, a.PostalCode),
		a.Country,
		a.Phone,
	} {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// CouponSnapshot is the applied coupon as recorded on an order
type CouponSnapshot struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// AppliedCoupon returns the coupon snapshot, or nil when none was applied
func (o *Order) AppliedCoupon() *CouponSnapshot {
	if o.CouponCode == nil || *o.CouponCode == "" {
		return nil
	}
	return &CouponSnapshot{Code: *o.CouponCode, Discount: o.CouponDiscount.Decimal}
}

// ItemCount sums quantities over all lines
func (o *Order) ItemCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPlaced || o.Status == OrderStatusConfirmed
}

// GenerateOrderNumber returns ORD-YYYYMMDD-HHMMSS-XXXXXX. The suffix is random,
// so numbers are unique enough for display but not guaranteed unique.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102-150405"), suffix)
}
