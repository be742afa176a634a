// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles catalog reads, stock updates and admin product management
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
	IsActive  *bool  `form:"is_active"`
}

// SizeInput describes one size row in a create request
type SizeInput struct {
	Label     string          `json:"label" binding:"required"`
	SKU       string          `json:"sku" binding:"required"`
	MRP       decimal.Decimal `json:"mrp"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock" binding:"min=0"`
	SortOrder int             `json:"sort_order"`
}

// VariantInput describes one color in a create request
type VariantInput struct {
	Color     string      `json:"color" binding:"required"`
	ImageURL  string      `json:"image_url"`
	SortOrder int         `json:"sort_order"`
	Sizes     []SizeInput `json:"sizes" binding:"required,min=1,dive"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	IsActive    *bool          `json:"is_active"`
	Variants    []VariantInput `json:"variants" binding:"required,min=1,dive"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"is_active"`
}

// SizeUpdateRequest adjusts price or absolute stock of one SKU
type SizeUpdateRequest struct {
	MRP   *decimal.Decimal `json:"mrp"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Product{})

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to count products")
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	err := query.
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variants.Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Order(s.buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).
		Limit(req.Limit).
		Find(&products).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to retrieve products")
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ProductResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// CreateProduct creates a product with its full variant/size matrix
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	skus := make([]string, 0)
	seen := make(map[string]bool)
	for _, v := range req.Variants {
		for _, sz := range v.Sizes {
			sku := strings.TrimSpace(sz.SKU)
			if seen[sku] {
				return nil, apperror.Newf(apperror.CodeValidation, "duplicate SKU %s in request", sku)
			}
			if sz.Stock < 0 {
				return nil, apperror.Newf(apperror.CodeValidation, "stock for SKU %s cannot be negative", sku)
			}
			if sz.Price.IsNegative() || sz.MRP.IsNegative() {
				return nil, apperror.Newf(apperror.CodeValidation, "prices for SKU %s cannot be negative", sku)
			}
			seen[sku] = true
			skus = append(skus, sku)
		}
	}

	var existing Size
	err := s.db.WithContext(ctx).Where("sku IN ?", skus).First(&existing).Error
	if err == nil {
		return nil, apperror.Newf(apperror.CodeValidation, "product with SKU %s already exists", existing.SKU)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to check SKU uniqueness")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := Product{
		Name:        req.Name,
		Slug:        generateSlug(req.Name),
		Description: req.Description,
		Category:    req.Category,
		IsActive:    isActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		for _, vin := range req.Variants {
			variant := Variant{
				ProductID: product.ID,
				Color:     vin.Color,
				ImageURL:  vin.ImageURL,
				SortOrder: vin.SortOrder,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
			for _, sin := range vin.Sizes {
				size := Size{
					VariantID: variant.ID,
					ProductID: product.ID,
					Label:     sin.Label,
					SKU:       strings.TrimSpace(sin.SKU),
					MRP:       sin.MRP,
					Price:     sin.Price,
					Stock:     sin.Stock,
					SortOrder: sin.SortOrder,
				}
				if err := tx.Create(&size).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to create product")
	}

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct updates descriptive fields of a product
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, apperror.Wrap(apperror.CodeInternal, result.Error, "failed to update product")
		}
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.New(apperror.CodeNotFound, "product not found")
	}
	return product, nil
}

// UpdateSize changes price or sets absolute stock for a single SKU
func (s *Service) UpdateSize(ctx context.Context, productID uint, sku string, req *SizeUpdateRequest) (*Size, error) {
	updates := make(map[string]interface{})

	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperror.Newf(apperror.CodeValidation, "stock for SKU %s cannot be negative", sku)
		}
		updates["stock"] = *req.Stock
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperror.New(apperror.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.MRP != nil {
		if req.MRP.IsNegative() {
			return nil, apperror.New(apperror.CodeValidation, "mrp cannot be negative")
		}
		updates["mrp"] = *req.MRP
	}
	if len(updates) == 0 {
		return nil, apperror.New(apperror.CodeValidation, "nothing to update")
	}

	result := s.db.WithContext(ctx).
		Model(&Size{}).
		Where("product_id = ? AND sku = ?", productID, sku).
		Updates(updates)
	if result.Error != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, result.Error, "failed to update size")
	}
	if result.RowsAffected == 0 {
		return nil, apperror.Newf(apperror.CodeNotFound, "SKU %s not found for product %d", sku, productID)
	}

	var size Size
	if err := s.db.WithContext(ctx).Where("product_id = ? AND sku = ?", productID, sku).First(&size).Error; err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, err, "failed to reload size")
	}
	return &size, nil
}

// DeleteProduct removes a product with its variants and sizes
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&Size{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&Variant{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&Product{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, err, "failed to delete product")
	}
	if affected == 0 {
		return apperror.New(apperror.CodeNotFound, "product not found")
	}
	return nil
}

// buildOrderClause builds ORDER BY clause for sorting
func (s *Service) buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug generates URL-friendly slug from name
func generateSlug(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%d", slug, time.Now().UnixNano())
}
