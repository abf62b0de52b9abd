package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rayshop/shopmap-backend/config"
	"github.com/rayshop/shopmap-backend/internal/app/controller"
	"github.com/rayshop/shopmap-backend/internal/app/repository"
	"github.com/rayshop/shopmap-backend/internal/app/service"
	"github.com/rayshop/shopmap-backend/internal/db"
	"github.com/rayshop/shopmap-backend/internal/middleware"
	"github.com/rayshop/shopmap-backend/internal/router"
	"github.com/rayshop/shopmap-backend/internal/scheduler"
	"github.com/rayshop/shopmap-backend/internal/storage"
	"github.com/rayshop/shopmap-backend/pkg/logger"
	"github.com/rayshop/shopmap-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SHOPMAP Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize redis (storefront cache keeps working without it)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Failed to connect to redis, storefront caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	shopRepo := repository.NewShopRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	mapRepo := repository.NewImageMapRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, &cfg.JWT)
	shopService := service.NewShopService(shopRepo)
	productService := service.NewProductService(productRepo, shopRepo)
	mapService := service.NewImageMapService(mapRepo, shopRepo, productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	visionService := service.NewVisionService(cfg)
	exportService := service.NewExportService()

	// Initialize S3 storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	shopController := controller.NewShopController(shopService)
	productController := controller.NewProductController(productService)
	imageMapController := controller.NewImageMapController(mapService, visionService, exportService)
	cartController := controller.NewCartController(cartService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the nightly map maintenance pass
	maintenance := scheduler.NewMapMaintenanceScheduler(mapService)
	if err := maintenance.Start(); err != nil {
		logger.Warn("Failed to start map maintenance scheduler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer maintenance.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		shopController,
		productController,
		imageMapController,
		cartController,
		uploadController,
		mapService,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
