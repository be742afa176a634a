// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single shopping cart owned by a user
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem is one line of a cart. Price and MRP are captured when the item is added
// and are never patched afterwards.
type CartItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CartID    uint            `gorm:"not null;index" json:"cart_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	SKU       string          `gorm:"not null;size:100" json:"sku"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	MRP       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"mrp"`
	Size      string          `gorm:"size:20" json:"size"`
	Color     string          `gorm:"size:100" json:"color"`
	ImageURL  string          `gorm:"size:500" json:"image_url"`
	Position  int             `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is unit price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums captured unit price times quantity over all items
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart is absent or has no items
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int             `json:"item_count"`     // Number of unique items
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	SubTotal      decimal.Decimal `json:"sub_total"`
	TotalMRP      decimal.Decimal `json:"total_mrp"`
	Savings       decimal.Decimal `json:"savings"`
}

// Totals summarises the cart for display
func (c *Cart) Totals() CartTotals {
	totals := CartTotals{SubTotal: decimal.Zero, TotalMRP: decimal.Zero, Savings: decimal.Zero}
	if c == nil {
		return totals
	}
	for _, item := range c.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totals.ItemCount++
		totals.TotalQuantity += item.Quantity
		totals.SubTotal = totals.SubTotal.Add(item.Price.Mul(qty))
		totals.TotalMRP = totals.TotalMRP.Add(item.MRP.Mul(qty))
	}
	totals.Savings = totals.TotalMRP.Sub(totals.SubTotal)
	if totals.Savings.IsNegative() {
		totals.Savings = decimal.Zero
	}
	return totals
}
