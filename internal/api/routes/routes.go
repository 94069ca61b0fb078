package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/config"
	"buy-bye-api-server/internal/api/handlers"
	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/geocode"
	"buy-bye-api-server/internal/notify"
	"buy-bye-api-server/internal/s3"
	"buy-bye-api-server/internal/socket"
)

// SetupRouter wires every endpoint to its handler.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	geocoder *geocode.Client,
	mailer *notify.Mailer,
	sms *notify.SMSSender,
	pusher *notify.Pusher,
	uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	secret := []byte(cfg.JWT.Secret)

	customerHandler := &handlers.CustomerHandler{DB: db, Mailer: mailer, Geocoder: geocoder, JWTSecret: secret}
	vendorHandler := &handlers.VendorHandler{DB: db, Mailer: mailer, SMS: sms, Geocoder: geocoder, JWTSecret: secret}
	searchHandler := &handlers.SearchHandler{DB: db}
	rationPackHandler := &handlers.RationPackHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db, Uploader: uploader}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	subCategoryHandler := &handlers.SubCategoryHandler{DB: db}
	vendorProductHandler := &handlers.VendorProductHandler{DB: db}
	cartHandler := &handlers.CartHandler{DB: db}
	orderHandler := &handlers.OrderHandler{DB: db, Hub: wsHub}
	vendorOrderHandler := &handlers.VendorOrderHandler{DB: db, Pusher: pusher, Hub: wsHub}
	reviewHandler := &handlers.ReviewHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db, JWTSecret: secret}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWTSecret: secret}

	customerAuth := middleware.AuthenticateCustomer(db, secret)
	vendorAuth := middleware.AuthenticateVendor(db, secret)
	adminAuth := middleware.AuthenticateAdmin(db, secret)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})

	api := router.Group("/api")
	{
		api.GET("/ws", webSocketHandler.ServeWs)

		customers := api.Group("/customers")
		{
			customers.POST("/register", customerHandler.Register)
			customers.GET("/verify-email/:token", customerHandler.VerifyEmail)
			customers.POST("/login", customerHandler.Login)

			authed := customers.Group("/")
			authed.Use(customerAuth)
			{
				authed.GET("/profile", customerHandler.GetProfile)
				authed.PUT("/profile", customerHandler.UpdateProfile)
				authed.PUT("/location", customerHandler.UpdateLocation)
				authed.POST("/push-token", customerHandler.SavePushToken)

				authed.GET("/nearby-vendors", searchHandler.NearbyVendors)
				authed.GET("/nearby-products", searchHandler.NearbyProducts)
				authed.GET("/search-nearby-vendors-products", searchHandler.SearchNearbyVendorsProducts)
				authed.GET("/price-comparison", searchHandler.PriceComparison)
				authed.POST("/ration-packs", rationPackHandler.Compare)
			}
		}

		vendors := api.Group("/vendors")
		{
			vendors.POST("/register", vendorHandler.Register)
			vendors.GET("/verify-email/:token", vendorHandler.VerifyEmail)
			vendors.POST("/resend-verification", vendorHandler.ResendVerification)
			vendors.POST("/login", vendorHandler.Login)
			vendors.GET("/nearby", vendorHandler.Nearby)
			vendors.GET("/", vendorHandler.List)
			vendors.GET("/:id", vendorHandler.GetByID)

			authed := vendors.Group("/")
			authed.Use(vendorAuth)
			{
				authed.GET("/profile", vendorHandler.GetProfile)
				authed.PUT("/profile", vendorHandler.UpdateProfile)
				authed.POST("/request-phone-code", vendorHandler.RequestPhoneCode)
				authed.POST("/verify-phone", vendorHandler.VerifyPhone)
			}
		}

		products := api.Group("/products")
		{
			products.GET("/", productHandler.List)
			products.GET("/search", productHandler.Search)
			products.GET("/:id", productHandler.GetByID)
			products.GET("/category/:categoryId", productHandler.ByCategory)
			products.GET("/sub-category/:subCategoryId", productHandler.BySubCategory)

			adminOnly := products.Group("/")
			adminOnly.Use(adminAuth)
			{
				adminOnly.POST("/", productHandler.Create)
				adminOnly.PUT("/:id", productHandler.Update)
				adminOnly.DELETE("/:id", productHandler.Delete)
				adminOnly.POST("/upload-image", productHandler.UploadImage)
			}
		}

		categories := api.Group("/categories")
		{
			categories.GET("/", categoryHandler.List)
			categories.GET("/:id/sub-categories", subCategoryHandler.ListByCategory)

			adminOnly := categories.Group("/")
			adminOnly.Use(adminAuth)
			{
				adminOnly.POST("/", categoryHandler.Create)
				adminOnly.PUT("/:id", categoryHandler.Update)
				adminOnly.DELETE("/:id", categoryHandler.Delete)
			}
		}

		subCategories := api.Group("/subcategories")
		{
			subCategories.GET("/", subCategoryHandler.List)

			adminOnly := subCategories.Group("/")
			adminOnly.Use(adminAuth)
			{
				adminOnly.POST("/", subCategoryHandler.Create)
				adminOnly.PUT("/:id", subCategoryHandler.Update)
				adminOnly.DELETE("/:id", subCategoryHandler.Delete)
			}
		}

		vendorProducts := api.Group("/vendor-products")
		vendorProducts.Use(vendorAuth)
		{
			vendorProducts.POST("/", vendorProductHandler.Upsert)
			vendorProducts.GET("/", vendorProductHandler.ListOwn)
			vendorProducts.GET("/:id", vendorProductHandler.GetByID)
			vendorProducts.PUT("/:id", vendorProductHandler.Update)
			vendorProducts.DELETE("/:id", vendorProductHandler.Delete)
		}

		cart := api.Group("/cart")
		cart.Use(customerAuth)
		{
			cart.GET("/", cartHandler.Get)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:vendorProductId", cartHandler.UpdateItem)
			cart.DELETE("/items/:vendorProductId", cartHandler.RemoveItem)
			cart.DELETE("/", cartHandler.Clear)
		}

		customerOrders := api.Group("/customer/orders")
		customerOrders.Use(customerAuth)
		{
			customerOrders.POST("/from-cart", orderHandler.CreateFromCart)
			customerOrders.POST("/", orderHandler.Create)
			customerOrders.GET("/", orderHandler.List)
			customerOrders.GET("/:id", orderHandler.GetByID)
			customerOrders.POST("/:id/cancel", orderHandler.Cancel)
			customerOrders.GET("/:id/tracking", orderHandler.Tracking)
		}

		vendorOrders := api.Group("/vendor/orders")
		vendorOrders.Use(vendorAuth)
		{
			vendorOrders.GET("/", vendorOrderHandler.List)
			vendorOrders.GET("/stats", vendorOrderHandler.Stats)
			vendorOrders.GET("/:id", vendorOrderHandler.GetByID)
			vendorOrders.PUT("/:id/status", vendorOrderHandler.UpdateStatus)
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("/vendor-product/:vendorProductId", reviewHandler.ListForListing)

			authed := reviews.Group("/")
			authed.Use(customerAuth)
			{
				authed.POST("/", reviewHandler.Submit)
				authed.GET("/my-reviews", reviewHandler.MyReviews)
				authed.GET("/reviewable-products", reviewHandler.ReviewableProducts)
				authed.PUT("/:id", reviewHandler.Update)
				authed.DELETE("/:id", reviewHandler.Delete)
			}
		}

		users := api.Group("/users")
		{
			users.POST("/login", userHandler.Login)

			adminOnly := users.Group("/")
			adminOnly.Use(adminAuth)
			{
				adminOnly.POST("/", userHandler.Create)
				adminOnly.GET("/", userHandler.List)
				adminOnly.GET("/:id", userHandler.GetByID)
				adminOnly.PUT("/:id", userHandler.Update)
				adminOnly.DELETE("/:id", userHandler.Delete)
			}
		}
	}

	return router
}
