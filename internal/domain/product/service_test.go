package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
	"github.com/your-org/apparel-store/internal/pkg/testdb"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t, &Product{}, &Variant{}, &Size{})
	return NewService(db), db
}

func teeRequest() *ProductCreateRequest {
	return &ProductCreateRequest{
		Name:     "Linen Shirt",
		Category: "shirts",
		Variants: []VariantInput{
			{
				Color:     "White",
				ImageURL:  "https://cdn.example.com/linen-white.jpg",
				SortOrder: 1,
				Sizes: []SizeInput{
					{Label: "M", SKU: "LS-WHT-M", MRP: decimal.NewFromInt(1499), Price: decimal.NewFromInt(999), Stock: 3, SortOrder: 2},
					{Label: "S", SKU: "LS-WHT-S", MRP: decimal.NewFromInt(1499), Price: decimal.NewFromInt(999), Stock: 0, SortOrder: 1},
				},
			},
			{
				Color:     "Navy",
				SortOrder: 0,
				Sizes: []SizeInput{
					{Label: "L", SKU: "LS-NVY-L", MRP: decimal.NewFromInt(1599), Price: decimal.RequireFromString("1099.50"), Stock: 10},
				},
			},
		},
	}
}

func TestCreateAndGetProductOrdersMatrix(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)
	require.Len(t, created.Variants, 2)

	assert.Equal(t, "Navy", created.Variants[0].Color)
	assert.Equal(t, "White", created.Variants[1].Color)
	assert.Equal(t, "LS-WHT-S", created.Variants[1].Sizes[0].SKU)
	assert.Equal(t, "LS-WHT-M", created.Variants[1].Sizes[1].SKU)
	assert.True(t, created.IsActive)
	assert.Equal(t, 13, created.TotalStock())

	missing, err := svc.GetProduct(ctx, created.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, teeRequest())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "already exists")

	req := teeRequest()
	req.Variants[1].Sizes[0].SKU = "LS-WHT-M"
	_, err = svc.CreateProduct(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate SKU LS-WHT-M")
}

func TestLookupSKU(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	info, err := svc.LookupSKU(ctx, p.ID, "LS-NVY-L")
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", info.ProductName)
	assert.Equal(t, "Navy", info.Color)
	assert.Equal(t, "L", info.Size)
	assert.Equal(t, "1099.50", info.Price.StringFixed(2))
	assert.Equal(t, 10, info.Stock)

	_, err = svc.LookupSKU(ctx, p.ID, "LS-NVY-XXL")
	assert.Equal(t, apperror.CodeInvalidSKU, apperror.CodeOf(err))

	_, err = svc.LookupSKU(ctx, p.ID+1, "LS-NVY-L")
	assert.Equal(t, apperror.CodeProductMissing, apperror.CodeOf(err))
}

func TestDecrementStockIsConditional(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DecrementStock(ctx, p.ID, "LS-WHT-M", 2))

	err = svc.DecrementStock(ctx, p.ID, "LS-WHT-M", 2)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "LS-WHT-M")

	require.NoError(t, svc.DecrementStock(ctx, p.ID, "LS-WHT-M", 1))

	var size Size
	require.NoError(t, db.Where("sku = ?", "LS-WHT-M").First(&size).Error)
	assert.Equal(t, 0, size.Stock)

	var other Size
	require.NoError(t, db.Where("sku = ?", "LS-NVY-L").First(&other).Error)
	assert.Equal(t, 10, other.Stock)

	err = svc.DecrementStock(ctx, p.ID+1, "LS-NVY-L", 1)
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.CodeOf(err))
}

func TestDecrementStockInsideRolledBackTx(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := svc.WithTx(tx).DecrementStock(ctx, p.ID, "LS-NVY-L", 4); err != nil {
			return err
		}
		return svc.WithTx(tx).DecrementStock(ctx, p.ID, "LS-WHT-S", 1)
	})
	require.Error(t, err)

	info, err := svc.LookupSKU(ctx, p.ID, "LS-NVY-L")
	require.NoError(t, err)
	assert.Equal(t, 10, info.Stock)
}

func TestUpdateSizeAndProduct(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	stock := 25
	price := decimal.NewFromInt(899)
	size, err := svc.UpdateSize(ctx, p.ID, "LS-WHT-S", &SizeUpdateRequest{Stock: &stock, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 25, size.Stock)
	assert.True(t, size.Price.Equal(price))

	negative := -1
	_, err = svc.UpdateSize(ctx, p.ID, "LS-WHT-S", &SizeUpdateRequest{Stock: &negative})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = svc.UpdateSize(ctx, p.ID, "NOPE", &SizeUpdateRequest{Stock: &stock})
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	inactive := false
	name := "Linen Shirt Classic"
	updated, err := svc.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.False(t, updated.IsActive)
}

func TestGetProductsAndDelete(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	req := teeRequest()
	req.Name = "Denim Jacket"
	req.Category = "jackets"
	for vi := range req.Variants {
		for si := range req.Variants[vi].Sizes {
			req.Variants[vi].Sizes[si].SKU = "DJ-" + req.Variants[vi].Sizes[si].SKU
		}
	}
	_, err = svc.CreateProduct(ctx, req)
	require.NoError(t, err)

	res, err := svc.GetProducts(ctx, &ProductListRequest{Search: "denim"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Denim Jacket", res.Products[0].Name)
	assert.Equal(t, int64(1), res.Pagination.Total)

	res, err = svc.GetProducts(ctx, &ProductListRequest{Limit: 1, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	var count int64
	db.Model(&Size{}).Where("product_id = ?", p.ID).Count(&count)
	assert.Zero(t, count)

	err = svc.DeleteProduct(ctx, p.ID)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestRestoreStock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, teeRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DecrementStock(ctx, p.ID, "LS-WHT-M", 3))
	require.NoError(t, svc.RestoreStock(ctx, p.ID, "LS-WHT-M", 2))
	require.NoError(t, svc.RestoreStock(ctx, p.ID, "GONE-SKU", 2))

	info, err := svc.LookupSKU(ctx, p.ID, "LS-WHT-M")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Stock)
}
