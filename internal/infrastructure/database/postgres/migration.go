// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/cart"
	"github.com/your-org/apparel-store/internal/domain/coupon"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		// User domain
		&user.User{},

		// Catalog
		&product.Product{},
		&product.Variant{},
		&product.Size{},

		// Cart domain
		&cart.Cart{},
		&cart.CartItem{},

		&coupon.Coupon{},

		// Order domain - dependent tables
		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},
		&order.OrderStatusHistory{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the order and catalog queries
func (m *Migration) CreateIndexes() error {
	m.logger.Info("Creating additional database indexes")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_sort ON product_variants(product_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_product_sizes_product_sku ON product_sizes(product_id, sku)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_position ON cart_items(cart_id, position)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_cart_sku ON cart_items(cart_id, sku)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_active_expires ON coupons(is_active, expires_at)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_coupon_code ON orders(coupon_code)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order_sku ON order_items(order_id, sku)",

		// Payment indexes
		"CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments(order_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at DESC)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.Infof("Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts the development admin, customer, sample catalog
// and a welcome coupon. Existing rows are left untouched.
func (m *Migration) SeedInitialData(ctx context.Context, bcryptCost int) error {
	m.logger.Info("Seeding initial data")

	if err := m.seedUser(ctx, "admin@example.com", "admin123", "Admin", "User", true, bcryptCost); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedUser(ctx, "customer@example.com", "customer123", "Test", "Customer", false, bcryptCost); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}
	if err := m.seedProducts(ctx); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(ctx); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	m.logger.Info("Initial data seeded successfully")
	return nil
}

func (m *Migration) seedUser(ctx context.Context, email, password, first, last string, isAdmin bool, cost int) error {
	exists, err := m.exists(ctx, &user.User{}, "email = ?", email)
	if err != nil || exists {
		if exists {
			m.logger.Debugf("User already exists: %s", email)
		}
		return err
	}

	if _, err := user.NewService(m.db).Create(ctx, email, password, first, last, isAdmin, cost); err != nil {
		return err
	}
	m.logger.WithField("admin", isAdmin).Infof("Created user: %s", email)
	return nil
}

func (m *Migration) seedProducts(ctx context.Context) error {
	active := true
	products := []product.ProductCreateRequest{
		{
			Name:        "Classic Cotton Tee",
			Description: "Everyday crew neck t-shirt in combed cotton",
			Category:    "t-shirts",
			IsActive:    &active,
			Variants: []product.VariantInput{
				{
					Color: "Black",
					Sizes: []product.SizeInput{
						seedSize("M", "CT-BLK-M", "1299", "999", 25),
						seedSize("L", "CT-BLK-L", "1299", "999", 20),
					},
				},
				{
					Color:     "White",
					SortOrder: 1,
					Sizes: []product.SizeInput{
						seedSize("M", "CT-WHT-M", "1299", "999", 25),
						seedSize("L", "CT-WHT-L", "1299", "999", 5),
					},
				},
			},
		},
		{
			Name:        "Slim Fit Chinos",
			Description: "Stretch twill chinos with a tapered leg",
			Category:    "trousers",
			IsActive:    &active,
			Variants: []product.VariantInput{
				{
					Color: "Khaki",
					Sizes: []product.SizeInput{
						seedSize("30", "SC-KHK-30", "2499", "1899", 10),
						seedSize("32", "SC-KHK-32", "2499", "1899", 12),
					},
				},
			},
		},
	}

	catalog := product.NewService(m.db)
	for i := range products {
		req := &products[i]
		exists, err := m.exists(ctx, &product.Size{}, "sku = ?", req.Variants[0].Sizes[0].SKU)
		if err != nil {
			return err
		}
		if exists {
			m.logger.Debugf("Product already exists: %s", req.Name)
			continue
		}
		if _, err := catalog.CreateProduct(ctx, req); err != nil {
			return err
		}
		m.logger.Infof("Created product: %s", req.Name)
	}
	return nil
}

func (m *Migration) seedCoupons(ctx context.Context) error {
	exists, err := m.exists(ctx, &coupon.Coupon{}, "code = ?", "WELCOME10")
	if err != nil || exists {
		return err
	}

	active := true
	maxDiscount := decimal.NewFromInt(150)
	_, err = coupon.NewService(m.db).Create(ctx, &coupon.CreateCouponRequest{
		Code:         "WELCOME10",
		DiscountType: coupon.DiscountTypePercentage,
		Value:        decimal.NewFromInt(10),
		MinCartValue: decimal.NewFromInt(499),
		MaxDiscount:  &maxDiscount,
		ExpiresAt:    time.Now().AddDate(1, 0, 0),
		IsActive:     &active,
	})
	if err != nil {
		return err
	}
	m.logger.Info("Created coupon: WELCOME10")
	return nil
}

func (m *Migration) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	err := m.db.WithContext(ctx).Where(query, args...).First(model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func seedSize(label, sku, mrp, price string, stock int) product.SizeInput {
	return product.SizeInput{
		Label: label,
		SKU:   sku,
		MRP:   decimal.RequireFromString(mrp),
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

// DropAllTables drops every table in reverse dependency order (development only)
func (m *Migration) DropAllTables() error {
	m.logger.Warn("Dropping all tables")

	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	return nil
}
