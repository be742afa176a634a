// internal/domain/product/catalog.go
package product

import (
	"context"
	"errors"

	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Catalog is the read/decrement surface the order pipeline depends on
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*Product, error)
	LookupSKU(ctx context.Context, productID uint, sku string) (*SKUInfo, error)
	DecrementStock(ctx context.Context, productID uint, sku string, qty int) error
	RestoreStock(ctx context.Context, productID uint, sku string, qty int) error
	WithTx(tx *gorm.DB) Catalog
}

// WithTx returns a catalog bound to the given transaction
func (s *Service) WithTx(tx *gorm.DB) Catalog {
	if tx == nil {
		return s
	}
	return &Service{db: tx}
}

// GetProduct loads a product with its variants and sizes in display order.
// A missing product yields (nil, nil).
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variants.Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Wrap(apperror.CodeInternal, result.Error, "failed to retrieve product")
	}

	return &product, nil
}

// LookupSKU returns price, list price and stock for one SKU of a product
func (s *Service) LookupSKU(ctx context.Context, productID uint, sku string) (*SKUInfo, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.Newf(apperror.CodeProductMissing, "product %d no longer exists", productID)
	}

	variant, size, ok := product.FindSize(sku)
	if !ok {
		return nil, apperror.Newf(apperror.CodeInvalidSKU, "invalid SKU %s for product %s", sku, product.Name)
	}

	return &SKUInfo{
		ProductID:   product.ID,
		ProductName: product.Name,
		SKU:         size.SKU,
		Size:        size.Label,
		Color:       variant.Color,
		ImageURL:    variant.ImageURL,
		MRP:         size.MRP,
		Price:       size.Price,
		Stock:       size.Stock,
	}, nil
}

// DecrementStock subtracts qty from the single size row matching sku.
// The update only applies while enough stock remains; otherwise it fails
// with INSUFFICIENT_STOCK. Calling it twice decrements twice.
func (s *Service) DecrementStock(ctx context.Context, productID uint, sku string, qty int) error {
	if qty < 1 {
		return apperror.Newf(apperror.CodeValidation, "quantity for SKU %s must be at least 1", sku)
	}

	result := s.db.WithContext(ctx).
		Model(&Size{}).
		Where("product_id = ? AND sku = ? AND stock >= ?", productID, sku, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))

	if result.Error != nil {
		return apperror.Wrap(apperror.CodeInternal, result.Error, "failed to decrement stock")
	}
	if result.RowsAffected == 0 {
		return apperror.Newf(apperror.CodeInsufficientStock, "insufficient stock for SKU %s", sku)
	}
	return nil
}

// RestoreStock puts qty units back on a SKU, used when an order is cancelled
func (s *Service) RestoreStock(ctx context.Context, productID uint, sku string, qty int) error {
	if qty < 1 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&Size{}).
		Where("product_id = ? AND sku = ?", productID, sku).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))

	if result.Error != nil {
		return apperror.Wrap(apperror.CodeInternal, result.Error, "failed to restore stock")
	}
	return nil
}
