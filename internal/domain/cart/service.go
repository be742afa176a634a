// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Store is the cart surface consumed by the order pipeline
type Store interface {
	Get(ctx context.Context, userID uint) (*Cart, error)
	Delete(ctx context.Context, userID uint) error
	WithTx(tx *gorm.DB) Store
}

type skuLookup interface {
	LookupSKU(ctx context.Context, productID uint, sku string) (*product.SKUInfo, error)
}

// Service handles cart business logic
type Service struct {
	db      *gorm.DB
	catalog skuLookup
}

// NewService creates a new cart service
func NewService(db *gorm.DB, catalog skuLookup) *Service {
	return &Service{
		db:      db,
		catalog: catalog,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	SKU       string `json:"sku" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// WithTx returns a store bound to the given transaction
func (s *Service) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return s
	}
	return &Service{db: tx, catalog: s.catalog}
}

// Get returns the user's cart with items in insertion order, or nil when none exists
func (s *Service) Get(ctx context.Context, userID uint) (*Cart, error) {
	var cart Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to retrieve cart")
	}
	return &cart, nil
}

// Delete removes the cart and all of its items. Missing carts are ignored.
func (s *Service) Delete(ctx context.Context, userID uint) error {
	var cart Cart
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to load cart")
	}

	if err := s.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to clear cart items")
	}
	if err := s.db.WithContext(ctx).Delete(&cart).Error; err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to delete cart")
	}
	return nil
}

// AddItem builds a fresh line item from the live catalog and appends it,
// replacing any existing line with the same SKU.
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddToCartRequest) (*Cart, error) {
	if req.Quantity < 1 {
		return nil, apperror.New(apperror.CodeValidation, "quantity must be at least 1")
	}

	info, err := s.catalog.LookupSKU(ctx, req.ProductID, req.SKU)
	if err != nil {
		return nil, err
	}
	if info.Stock < req.Quantity {
		return nil, apperror.Newf(apperror.CodeInsufficientStock, "insufficient stock for SKU %s", req.SKU)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart Cart
		if err := tx.Where(Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ? AND sku = ?", cart.ID, info.SKU).Delete(&CartItem{}).Error; err != nil {
			return err
		}

		var lastPosition int
		row := tx.Model(&CartItem{}).Where("cart_id = ?", cart.ID).Select("COALESCE(MAX(position), -1)").Row()
		if err := row.Scan(&lastPosition); err != nil {
			return err
		}

		item := CartItem{
			CartID:    cart.ID,
			ProductID: info.ProductID,
			SKU:       info.SKU,
			Name:      info.ProductName,
			Quantity:  req.Quantity,
			Price:     info.Price,
			MRP:       info.MRP,
			Size:      info.Size,
			Color:     info.Color,
			ImageURL:  info.ImageURL,
			Position:  lastPosition + 1,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return tx.Model(&cart).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to add item to cart")
	}

	return s.Get(ctx, userID)
}

// RemoveItem drops the line with the given SKU
func (s *Service) RemoveItem(ctx context.Context, userID uint, sku string) (*Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperror.New(apperror.CodeNotFound, "cart not found")
	}

	result := s.db.WithContext(ctx).Where("cart_id = ? AND sku = ?", cart.ID, sku).Delete(&CartItem{})
	if result.Error != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, result.Error, "failed to remove cart item")
	}
	if result.RowsAffected == 0 {
		return nil, apperror.Newf(apperror.CodeNotFound, "SKU %s is not in the cart", sku)
	}

	return s.Get(ctx, userID)
}
