// internal/domain/coupon/entity.go
package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType represents how a coupon value is applied
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

// Coupon represents a promotional code. Redemptions are not tracked.
type Coupon struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	Code         string              `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountType DiscountType        `gorm:"not null;size:20" json:"discount_type"`
	Value        decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"value"`
	MinCartValue decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"min_cart_value"`
	MaxDiscount  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"max_discount"` // percentage coupons only
	ExpiresAt    time.Time           `gorm:"not null" json:"expires_at"`
	IsActive     bool                `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired reports whether the coupon expired before now
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// Application is the result of evaluating a coupon against a subtotal
type Application struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// NormalizeCode trims and upper-cases a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
