package httpserver

import (
	"io"
	"log"

	cartsvc "ecomweb/internal/service/cart"
	catalogsvc "ecomweb/internal/service/catalog"
	checkoutsvc "ecomweb/internal/service/checkout"
	ordersvc "ecomweb/internal/service/order"
	usersvc "ecomweb/internal/service/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the handlers delegate to.
type Deps struct {
	CatalogSvc  *catalogsvc.Service
	CartSvc     *cartsvc.Service
	CheckoutSvc *checkoutsvc.Service
	OrderSvc    *ordersvc.Service
	UserSvc     *usersvc.Service
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")

	products := api.Group("/products")
	products.GET("", h.listProducts)
	products.GET("/available", h.listAvailableProducts)
	products.GET("/categories", h.listCategories)
	products.GET("/category/:category", h.listProductsByCategory)
	products.GET("/search", h.searchProducts)
	products.GET("/:id", h.getProduct)
	products.POST("", h.createProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)

	cart := api.Group("/cart")
	cart.POST("/add", h.addToCart)
	cart.GET("/user/:userId", h.cartLines)
	cart.GET("/total/:userId", h.cartTotal)
	cart.GET("/count/:userId", h.cartCount)
	cart.PUT("/update/:cartItemId", h.updateCartItem)
	cart.DELETE("/remove/:cartItemId", h.removeCartItem)
	cart.DELETE("/clear/:userId", h.clearCart)

	orders := api.Group("/orders")
	orders.POST("/create", h.createOrder)
	orders.GET("/user/:userId", h.userOrders)
	orders.GET("/admin/all", h.allOrders)
	orders.GET("/admin/stats", h.orderStats)
	orders.GET("/admin/status-list/:status", h.ordersByStatus)
	orders.PUT("/admin/status/:orderId", h.updateOrderStatus)
	orders.GET("/:orderId", h.getOrder)

	users := api.Group("/users")
	users.POST("/register", h.registerUser)
	users.POST("/login", h.loginUser)
	users.GET("/admin/all", h.listUsers)
	users.DELETE("/admin/:id", h.deleteUser)
	users.GET("/:id", h.getUser)

	api.GET("/dashboard/stats", h.dashboardStats)

	return router
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
