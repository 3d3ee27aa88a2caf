// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, svc *Services, cfg *config.Config, logger *logrus.Logger) {
	sessions := handlers.NewSessions(cfg.Session, int(cfg.JWT.AccessTokenExpiry.Seconds()))
	requireAuth := middleware.AuthMiddleware(cfg, svc.JWT)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg, svc.JWT)

	SetupAuthRoutes(rg, handlers.NewAuthHandler(svc.Users, svc.Carts, sessions, logger), requireAuth)
	SetupProductRoutes(rg, handlers.NewProductHandler(svc.Products, logger))
	SetupCartRoutes(rg, handlers.NewCartHandler(svc.Carts, sessions, logger), optionalAuth)
	SetupWishlistRoutes(rg, handlers.NewWishlistHandler(svc.Wishlist, logger), requireAuth)
	SetupCheckoutRoutes(rg, handlers.NewCheckoutHandler(svc.Checkout, logger), requireAuth)

	orderHandler := handlers.NewOrderHandler(svc.Orders, logger)
	SetupOrderRoutes(rg, orderHandler, requireAuth)
	SetupAdminRoutes(rg, handlers.NewProductHandler(svc.Products, logger), orderHandler, requireAuth)
}

// SetupAuthRoutes sets up authentication and profile routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, requireAuth gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)
		auth.POST("/logout", h.Logout)

		protected := auth.Group("")
		protected.Use(requireAuth)
		{
			protected.GET("/profile", h.GetProfile)
			protected.PUT("/profile", h.UpdateProfile)
		}
	}

	users := rg.Group("/users")
	users.Use(requireAuth)
	{
		users.POST("/addresses", h.SaveAddress)
	}
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/slug/:slug", h.GetProductBySlug)
	}

	rg.GET("/categories", h.GetCategories)
}

// SetupCartRoutes sets up cart routes. Guests are identified by the session cookie.
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, optionalAuth gin.HandlerFunc) {
	cart := rg.Group("/cart")
	cart.Use(optionalAuth)
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCartCount)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:id", h.UpdateCartItem)
		cart.DELETE("/items/:id", h.RemoveFromCart)
		cart.DELETE("", h.ClearCart)
	}
}

// SetupWishlistRoutes sets up wishlist routes
func SetupWishlistRoutes(rg *gin.RouterGroup, h *handlers.WishlistHandler, requireAuth gin.HandlerFunc) {
	wishlist := rg.Group("/wishlist")
	wishlist.Use(requireAuth)
	{
		wishlist.GET("", h.GetWishlist)
		wishlist.GET("/count", h.GetWishlistCount)
		wishlist.POST("", h.AddToWishlist)
		wishlist.DELETE("/:product_id", h.RemoveFromWishlist)
		wishlist.POST("/:product_id/move-to-cart", h.MoveToCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes. Unauthenticated shoppers are
// sent to the login route.
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler, requireAuth gin.HandlerFunc) {
	checkout := rg.Group("/checkout")
	checkout.Use(requireAuth)
	{
		checkout.GET("", h.GetCheckout)
		checkout.POST("/validate", h.ValidateForm)
		checkout.POST("", h.Submit)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, requireAuth gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.GET("", h.GetOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/cancel", h.CancelOrder)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, products *handlers.ProductHandler, orders *handlers.OrderHandler, requireAuth gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(requireAuth, middleware.AdminMiddleware())
	{
		admin.POST("/products", products.AdminCreateProduct)
		admin.PUT("/products/:id", products.AdminUpdateProduct)
		admin.DELETE("/products/:id", products.AdminDeleteProduct)

		admin.PUT("/orders/:id/status", orders.AdminUpdateOrderStatus)
	}
}
