package main

import (
	"gallery-service/internal/clock"
	"gallery-service/internal/gallery"
	"gallery-service/internal/grouping"
	"gallery-service/internal/handler"
	"gallery-service/internal/ledger"
	mid "gallery-service/internal/middleware"
	"gallery-service/internal/reservation"
	"gallery-service/pkg/config"
	"gallery-service/pkg/database"
	"gallery-service/pkg/jwtutil"
	"gallery-service/pkg/logger"
	"gallery-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting gallery-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port),
		zap.Int("block_threshold", appConfig.Gallery.BlockThreshold),
		zap.String("currency", appConfig.Gallery.Currency))

	// Initialize JWT utility for the internal selector API
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the core: ledger store, view builder, reservation engine
	clk := clock.NewSystem()
	store := ledger.NewStore(database.GetDB())
	viewBuilder := gallery.NewViewBuilder(store, grouping.NewEngine(appConfig.Gallery.BlockThreshold))
	reservations := reservation.NewService(store, clk,
		reservation.WithCurrency(appConfig.Gallery.Currency),
		reservation.WithLogger(log))

	galleryHandler := handler.NewGalleryHandler(store, viewBuilder, reservations, clk)
	shareHandler := handler.NewShareHandler(store, clk, appConfig.Gallery.LinkTTL)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Public gallery routes - token-addressed, no authentication
	e.GET("/gallery/view/:token", galleryHandler.ViewGallery)
	e.GET("/gallery/image/:token/:image_id", galleryHandler.GalleryImage)
	e.POST("/gallery/confirm_reservation", galleryHandler.ConfirmReservation)

	// Selector API routes - JWT-protected, company-scoped
	shareAPI := e.Group("/api/shares", mid.AuthMiddleware)
	shareAPI.GET("", shareHandler.ListShares)
	shareAPI.POST("", shareHandler.CreateShare)
	shareAPI.POST("/:id/regenerate_token", shareHandler.RegenerateToken)

	imageAPI := e.Group("/api/images", mid.AuthMiddleware)
	imageAPI.GET("", shareHandler.ListImages)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
