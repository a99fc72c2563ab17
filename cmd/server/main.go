package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/auth"
	"github.com/AgboganEmmanuel/planty/internal/cache"
	"github.com/AgboganEmmanuel/planty/internal/config"
	"github.com/AgboganEmmanuel/planty/internal/database"
	"github.com/AgboganEmmanuel/planty/internal/enrich"
	"github.com/AgboganEmmanuel/planty/internal/handlers"
	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/metrics"
	"github.com/AgboganEmmanuel/planty/internal/middleware"
	"github.com/AgboganEmmanuel/planty/internal/notify"
	"github.com/AgboganEmmanuel/planty/internal/plantnet"
	"github.com/AgboganEmmanuel/planty/internal/plants"
	"github.com/AgboganEmmanuel/planty/internal/telemetry"
	"github.com/AgboganEmmanuel/planty/internal/watering"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "planty-backend"

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Log.Sync() }()

	if envErr != nil {
		logger.Warn("No .env file found, using system environment variables")
	}

	logger.Log.Info("=== Planty server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	if cfg.JWTSecret == "" {
		logger.FatalWithFields("JWT_SECRET environment variable is required", nil)
	}

	// Initialize database and run migrations
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}
	defer database.Close()

	// Redis is optional; caching and rate limiting degrade without it
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without caching and rate limiting", zap.Error(err))
		redisClient = nil
	}

	// Tracing
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.TracingSamplingRate,
	})
	if err != nil {
		logger.Warn("Tracing disabled, exporter init failed", zap.Error(err))
	}
	if tracerProvider != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx, tracerProvider); err != nil {
				logger.Warn("Tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	metrics.Initialize()

	// Services
	authService := auth.NewService([]byte(cfg.JWTSecret))
	plantnetClient := plantnet.NewClient(cfg.PlantNet.Endpoint, cfg.PlantNet.Project, cfg.PlantNet.APIKey)
	enrichClient := enrich.NewClient(cfg.HuggingFace.Endpoint, cfg.HuggingFace.Token)
	notifyService := notify.NewService(database.DB, redisClient)
	plantService := plants.NewService(database.DB, enrichClient, notifyService)

	scheduler := watering.NewTimerScheduler(nil)
	defer scheduler.Stop()
	tracker := watering.NewTracker(database.DB, notifyService, scheduler, cfg.Watering.DedupWindow)

	h := handlers.NewHandlers(authService, plantnetClient, plantService, tracker, notifyService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.TracingEnabled {
		r.Use(middleware.TracingMiddleware(serviceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", authService.Middleware(), h.Me)
		}

		users := api.Group("/users")
		{
			users.Use(authService.Middleware())
			users.GET("/me", h.GetProfile)
			users.PUT("/me", h.UpdateProfile)
		}

		plantsGroup := api.Group("/plants")
		{
			plantsGroup.Use(authService.Middleware())
			// Identification calls an external API; keep it rate limited
			plantsGroup.POST("/identify",
				middleware.RedisRateLimitMiddleware(10, time.Minute), h.IdentifyPlant)
			plantsGroup.GET("", h.GetPlants)
			plantsGroup.GET("/watering", h.GetWateringList)
			plantsGroup.GET("/:id", h.GetPlant)
			plantsGroup.DELETE("/:id", h.DeletePlant)
			plantsGroup.POST("/:id/water", h.WaterPlant)
		}

		wateringGroup := api.Group("/watering")
		{
			wateringGroup.Use(authService.Middleware())
			wateringGroup.POST("/check", h.CheckWatering)
		}

		notifications := api.Group("/notifications")
		{
			notifications.Use(authService.Middleware())
			notifications.GET("", h.GetNotifications)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("🌱 Planty backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.FatalWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("Server exited")
}
