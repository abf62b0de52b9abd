package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/internal/app/controller"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	"github.com/rayshop/shopmap-backend/internal/middleware"
	"github.com/rayshop/shopmap-backend/internal/websocket"
)

type Router struct {
	authController     *controller.AuthController
	shopController     *controller.ShopController
	productController  *controller.ProductController
	imageMapController *controller.ImageMapController
	cartController     *controller.CartController
	uploadController   *controller.UploadController
	mapService         service.ImageMapService
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	shopController *controller.ShopController,
	productController *controller.ProductController,
	imageMapController *controller.ImageMapController,
	cartController *controller.CartController,
	uploadController *controller.UploadController,
	mapService service.ImageMapService,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		shopController:     shopController,
		productController:  productController,
		imageMapController: imageMapController,
		cartController:     cartController,
		uploadController:   uploadController,
		mapService:         mapService,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "SHOPMAP API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
		}

		// Shopper-facing storefront: public, read-only
		shops := v1.Group("/shops")
		{
			shops.GET("/:slug", r.shopController.GetShop)
			shops.GET("/:slug/image-map", r.imageMapController.ActiveMap)
			shops.GET("/:slug/storefront", r.imageMapController.Storefront)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddLine)
			cart.PATCH("/:lineId", r.cartController.UpdateQuantity)
			cart.DELETE("/:lineId", r.cartController.RemoveLine)
		}

		// Merchant dashboard: authenticated, shop-scoped
		manage := v1.Group("/manage/shops/:shopId")
		manage.Use(
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("merchant", "admin"),
			r.authMiddleware.RequireShopAccess(),
		)
		{
			manage.GET("/visibility", r.shopController.GetVisibility)
			manage.PUT("/visibility", r.shopController.UpdateVisibility)

			manage.POST("/products", r.productController.CreateProduct)
			manage.PUT("/products/:id", r.productController.UpdateProduct)
			manage.DELETE("/products/:id", r.productController.DeleteProduct)

			maps := manage.Group("/image-maps")
			{
				maps.GET("", r.imageMapController.ListMaps)
				maps.POST("", r.imageMapController.CreateMap)
				maps.POST("/analyze", r.imageMapController.AnalyzeMap)
				maps.PATCH("/:mapId/activate", r.imageMapController.ActivateMap)
				maps.PATCH("/:mapId/layout", r.imageMapController.SaveLayout)
				maps.GET("/:mapId/export", r.imageMapController.ExportLayout)
				maps.GET("/:mapId/edit", websocket.EditorHandler(r.mapService))
				maps.DELETE("/:mapId", r.imageMapController.DeleteMap)
			}
		}

		upload := v1.Group("/upload")
		upload.Use(
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("merchant", "admin"),
		)
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
