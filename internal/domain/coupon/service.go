// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Service handles coupon lookup, evaluation and admin management
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new coupon service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// CreateCouponRequest represents coupon creation data
type CreateCouponRequest struct {
	Code         string           `json:"code" binding:"required,min=3,max=50"`
	DiscountType DiscountType     `json:"discount_type" binding:"required,oneof=percentage flat"`
	Value        decimal.Decimal  `json:"value"`
	MinCartValue decimal.Decimal  `json:"min_cart_value"`
	MaxDiscount  *decimal.Decimal `json:"max_discount"`
	ExpiresAt    time.Time        `json:"expires_at" binding:"required"`
	IsActive     *bool            `json:"is_active"`
}

// UpdateCouponRequest represents coupon update data
type UpdateCouponRequest struct {
	DiscountType *DiscountType    `json:"discount_type" binding:"omitempty,oneof=percentage flat"`
	Value        *decimal.Decimal `json:"value"`
	MinCartValue *decimal.Decimal `json:"min_cart_value"`
	MaxDiscount  *decimal.Decimal `json:"max_discount"`
	ClearMax     bool             `json:"clear_max_discount"`
	ExpiresAt    *time.Time       `json:"expires_at"`
	IsActive     *bool            `json:"is_active"`
}

// FindActiveByCode returns the active coupon with the given code, matched
// case-insensitively, or nil when there is none.
func (s *Service) FindActiveByCode(ctx context.Context, code string) (*Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, nil
	}

	var c Coupon
	err := s.db.WithContext(ctx).Where("code = ? AND is_active = ?", normalized, true).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to look up coupon")
	}
	return &c, nil
}

// Evaluate validates a coupon against the cart subtotal and computes the discount
func (s *Service) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (*Application, error) {
	c, err := s.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.New(apperror.CodeInvalidCoupon, "invalid coupon code")
	}
	if c.IsExpired(s.now()) {
		return nil, apperror.Newf(apperror.CodeCouponExpired, "coupon %s has expired", c.Code)
	}
	if subtotal.LessThan(c.MinCartValue) {
		return nil, apperror.Newf(apperror.CodeMinCartValueNotMet,
			"minimum cart value of %s required for coupon %s", c.MinCartValue.StringFixed(2), c.Code)
	}

	return &Application{
		Code:     c.Code,
		Discount: Discount(c, subtotal),
	}, nil
}

// Discount computes the discount a coupon grants on subtotal. Percentage
// discounts honour MaxDiscount; flat discounts ignore it. The result never
// exceeds the subtotal.
func Discount(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = subtotal.Mul(c.Value).Div(hundred).Round(2)
		if c.MaxDiscount.Valid && discount.GreaterThan(c.MaxDiscount.Decimal) {
			discount = c.MaxDiscount.Decimal
		}
	case DiscountTypeFlat:
		discount = c.Value
	default:
		discount = decimal.Zero
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount
}

// List returns all coupons, newest first
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&coupons).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to list coupons")
	}
	return coupons, nil
}

// Get returns a coupon by id
func (s *Service) Get(ctx context.Context, id uint) (*Coupon, error) {
	var c Coupon
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "coupon not found")
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to load coupon")
	}
	return &c, nil
}

// Create stores a new coupon with its code upper-cased
func (s *Service) Create(ctx context.Context, req *CreateCouponRequest) (*Coupon, error) {
	c := Coupon{
		Code:         NormalizeCode(req.Code),
		DiscountType: req.DiscountType,
		Value:        req.Value,
		MinCartValue: req.MinCartValue,
		ExpiresAt:    req.ExpiresAt,
		IsActive:     true,
	}
	if req.MaxDiscount != nil {
		c.MaxDiscount = decimal.NewNullDecimal(*req.MaxDiscount)
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := validate(&c); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Coupon{}).Where("code = ?", c.Code).Count(&count).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to check coupon code")
	}
	if count > 0 {
		return nil, apperror.Newf(apperror.CodeValidation, "coupon %s already exists", c.Code)
	}

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to create coupon")
	}
	return &c, nil
}

// Update applies partial changes to a coupon
func (s *Service) Update(ctx context.Context, id uint, req *UpdateCouponRequest) (*Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountType != nil {
		c.DiscountType = *req.DiscountType
	}
	if req.Value != nil {
		c.Value = *req.Value
	}
	if req.MinCartValue != nil {
		c.MinCartValue = *req.MinCartValue
	}
	if req.MaxDiscount != nil {
		c.MaxDiscount = decimal.NewNullDecimal(*req.MaxDiscount)
	}
	if req.ClearMax {
		c.MaxDiscount = decimal.NullDecimal{}
	}
	if req.ExpiresAt != nil {
		c.ExpiresAt = *req.ExpiresAt
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to update coupon")
	}
	return c, nil
}

// Delete removes a coupon
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Coupon{}, id)
	if result.Error != nil {
		return apperror.Wrap(apperror.CodeInternal, result.Error, "failed to delete coupon")
	}
	if result.RowsAffected == 0 {
		return apperror.New(apperror.CodeNotFound, "coupon not found")
	}
	return nil
}

func validate(c *Coupon) error {
	if c.Code == "" {
		return apperror.New(apperror.CodeValidation, "coupon code is required")
	}
	if !c.Value.IsPositive() {
		return apperror.New(apperror.CodeValidation, "coupon value must be greater than zero")
	}
	switch c.DiscountType {
	case DiscountTypePercentage:
		if c.Value.GreaterThan(hundred) {
			return apperror.New(apperror.CodeValidation, "percentage value cannot exceed 100")
		}
	case DiscountTypeFlat:
	default:
		return apperror.Newf(apperror.CodeValidation, "unknown discount type %q", c.DiscountType)
	}
	if c.MinCartValue.IsNegative() {
		return apperror.New(apperror.CodeValidation, "minimum cart value cannot be negative")
	}
	if c.MaxDiscount.Valid && c.MaxDiscount.Decimal.IsNegative() {
		return apperror.New(apperror.CodeValidation, "max discount cannot be negative")
	}
	return nil
}
