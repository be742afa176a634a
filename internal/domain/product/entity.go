// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item. Colors are Variants, sizes inside a color are Sizes.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:100;index" json:"category"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Variants []Variant `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants"`
}

// Variant is a color-level grouping of a product
type Variant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Color     string    `gorm:"not null;size:100" json:"color"`
	ImageURL  string    `gorm:"size:500" json:"image_url"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sizes []Size `gorm:"foreignKey:VariantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sizes"`
}

// Size is the unit of inventory
type Size struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	VariantID uint            `gorm:"not null;index" json:"variant_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Label     string          `gorm:"not null;size:20" json:"label"`
	SKU       string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	MRP       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"mrp"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	SortOrder int             `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// TableName specifies the table name for Variant
func (Variant) TableName() string {
	return "product_variants"
}

// TableName specifies the table name for Size
func (Size) TableName() string {
	return "product_sizes"
}

// FindSize resolves a SKU inside the product's variant/size matrix
func (p *Product) FindSize(sku string) (*Variant, *Size, bool) {
	for vi := range p.Variants {
		variant := &p.Variants[vi]
		for si := range variant.Sizes {
			if variant.Sizes[si].SKU == sku {
				return variant, &variant.Sizes[si], true
			}
		}
	}
	return nil, nil, false
}

// TotalStock sums stock over every size
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		for _, s := range v.Sizes {
			total += s.Stock
		}
	}
	return total
}

// SKUInfo is the inventory view of one SKU
type SKUInfo struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	ImageURL    string          `json:"image_url"`
	MRP         decimal.Decimal `json:"mrp"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}
