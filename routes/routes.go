package routes

import (
	"net/http"

	"mall-backend/handlers"
	"mall-backend/middleware"
	"mall-backend/store"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API on r. limiter may be nil to disable rate
// limiting on the shopping routes.
func SetupRoutes(r *gin.Engine, s *store.Store, limiter *middleware.RateLimiter) {
	// Initialize handlers
	productHandler := &handlers.ProductHandler{Store: s}
	categoryHandler := &handlers.CategoryHandler{Store: s}
	cartHandler := &handlers.CartHandler{Store: s}
	orderHandler := &handlers.OrderHandler{Store: s}
	paymentHandler := &handlers.PaymentHandler{Store: s}
	customerHandler := &handlers.CustomerHandler{Store: s}
	wishlistHandler := &handlers.WishlistHandler{Store: s}

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)
	}

	// Shopping routes work for guests (session key) and signed-in users
	shop := api.Group("")
	shop.Use(middleware.IdentityMiddleware())
	if limiter != nil {
		shop.Use(limiter.Middleware())
	}
	{
		shop.GET("/cart", cartHandler.GetCart)
		shop.POST("/cart/items", cartHandler.AddToCart)
		shop.PUT("/cart/items/:id", cartHandler.UpdateCartItem)
		shop.DELETE("/cart/items/:id", cartHandler.RemoveFromCart)
		shop.DELETE("/cart", cartHandler.ClearCart)

		shop.POST("/orders/checkout", orderHandler.Checkout)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/cart/claim", cartHandler.ClaimCart)

		protected.GET("/customer", customerHandler.GetProfile)
		protected.PUT("/customer", customerHandler.UpdateProfile)

		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)

		protected.GET("/wishlist", wishlistHandler.GetWishlist)
		protected.POST("/wishlist", wishlistHandler.AddToWishlist)
		protected.DELETE("/wishlist/:product_id", wishlistHandler.RemoveFromWishlist)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Catalog management
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		// Order management
		admin.GET("/orders", orderHandler.GetAllOrders)
		admin.PUT("/orders/:id/complete", orderHandler.CompleteOrder)
		admin.DELETE("/orders/:id", orderHandler.DeleteOrder)

		// Payments
		admin.POST("/payments", paymentHandler.RecordPayment)
		admin.GET("/orders/:id/payments", paymentHandler.GetOrderPayments)
		admin.PUT("/payments/:id/status", paymentHandler.UpdatePaymentStatus)
		admin.GET("/payments/transitions", paymentHandler.GetPaymentTransitions)

		// Accounts
		admin.DELETE("/customers/:id", customerHandler.DeleteCustomer)
		admin.DELETE("/users/:id", customerHandler.DeleteUser)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := s.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
