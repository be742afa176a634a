// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/cart"
	"github.com/your-org/apparel-store/internal/domain/checkout"
	"github.com/your-org/apparel-store/internal/domain/coupon"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/domain/payment"
	"github.com/your-org/apparel-store/internal/domain/product"
	"github.com/your-org/apparel-store/internal/domain/tax"
	"github.com/your-org/apparel-store/internal/domain/user"
	"github.com/your-org/apparel-store/internal/interfaces/http/handlers"
	"github.com/your-org/apparel-store/internal/interfaces/http/middleware"
	"github.com/your-org/apparel-store/internal/pkg/auth"
	"github.com/your-org/apparel-store/internal/pkg/email"
	"github.com/your-org/apparel-store/internal/pkg/metrics"
	"github.com/your-org/apparel-store/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Handlers groups every API handler
type Handlers struct {
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Payment  *handlers.PaymentHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
	Coupon   *handlers.CouponHandler
}

// NewHandlers builds the services and the handlers on top of them
func NewHandlers(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger, reg prometheus.Registerer) Handlers {
	catalog := product.NewService(db)
	carts := cart.NewService(db, catalog)
	coupons := coupon.NewService(db)
	orders := order.NewService(db, catalog)

	engine := checkout.NewService(db, checkout.Dependencies{
		Carts:    carts,
		Catalog:  catalog,
		Coupons:  coupons,
		Users:    user.NewService(db),
		Orders:   orders,
		Tax:      tax.NewCalculator(cfg.Tax.CGSTRate, cfg.Tax.SGSTRate),
		Metrics:  metrics.NewOrderMetrics(reg),
		Logger:   logger,
		Currency: cfg.External.Razorpay.Currency,
	})

	payments := payment.NewService(
		payment.NewRazorpayClient(cfg.External.Razorpay),
		payment.NewRedisIntentStore(redisClient),
		engine,
		orders,
		cfg.External.Razorpay,
		logger,
	)

	notifier := email.NewEmailService(cfg.External.Email, cfg.Company, logger)

	return Handlers{
		Product:  handlers.NewProductHandler(catalog, logger),
		Cart:     handlers.NewCartHandler(carts, logger),
		Checkout: handlers.NewCheckoutHandler(engine, notifier, logger),
		Payment:  handlers.NewPaymentHandler(payments, notifier, logger),
		Order:    handlers.NewOrderHandler(orders, notifier, logger),
		Invoice:  handlers.NewInvoiceHandler(orders, pdf.NewService(cfg.Company, cfg.Invoice), logger),
		Coupon:   handlers.NewCouponHandler(coupons, logger),
	}
}

// SetupRoutes registers every API route under rg
func SetupRoutes(rg *gin.RouterGroup, h Handlers, tokens *auth.JWTManager) {
	SetupProductRoutes(rg, h)
	SetupCustomerRoutes(rg, h, tokens)
	SetupAdminRoutes(rg, h, tokens)
}

// SetupProductRoutes sets up the public catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:id", h.Product.GetProduct)
	}
}

// SetupCustomerRoutes sets up cart, checkout, order and payment routes
func SetupCustomerRoutes(rg *gin.RouterGroup, h Handlers, tokens *auth.JWTManager) {
	authed := rg.Group("")
	authed.Use(middleware.AuthMiddleware(tokens))

	cartGroup := authed.Group("/cart")
	{
		cartGroup.GET("", h.Cart.GetCart)
		cartGroup.POST("/items", h.Cart.AddToCart)
		cartGroup.DELETE("/items/:sku", h.Cart.RemoveFromCart)
		cartGroup.DELETE("", h.Cart.ClearCart)
	}

	authed.POST("/checkout/preview", h.Checkout.Preview)

	orders := authed.Group("/orders")
	{
		orders.POST("", h.Checkout.PlaceOrder)
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
	}

	payments := authed.Group("/payments")
	{
		payments.POST("/initiate", h.Payment.InitiatePayment)
		payments.POST("/verify", h.Payment.VerifyPayment)
	}
}

// SetupAdminRoutes sets up admin related routes
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers, tokens *auth.JWTManager) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens)) // Require authentication
	admin.Use(middleware.AdminMiddleware())      // Require admin privileges
	{
		// Product management
		products := admin.Group("/products")
		{
			products.GET("", h.Product.AdminGetProducts)
			products.GET("/:id", h.Product.AdminGetProduct)
			products.POST("", h.Product.CreateProduct)
			products.PUT("/:id", h.Product.UpdateProduct)
			products.DELETE("/:id", h.Product.DeleteProduct)
			products.PUT("/:id/sizes/:sku", h.Product.UpdateSize)
		}

		coupons := admin.Group("/coupons")
		{
			coupons.GET("", h.Coupon.GetCoupons)
			coupons.GET("/:id", h.Coupon.GetCoupon)
			coupons.POST("", h.Coupon.CreateCoupon)
			coupons.PUT("/:id", h.Coupon.UpdateCoupon)
			coupons.DELETE("/:id", h.Coupon.DeleteCoupon)
		}

		// Order management
		orders := admin.Group("/orders")
		{
			orders.GET("", h.Order.AdminGetOrders)
			orders.GET("/:id", h.Order.AdminGetOrder)
			orders.PUT("/:id/status", h.Order.UpdateOrderStatus)
			orders.PUT("/:id/payment", h.Order.MarkOrderPaid)
			orders.DELETE("/:id", h.Order.DeleteOrder)
		}
	}
}
