// @title SurveyPulse Analytics API
// @version 1.0
// @description Analytics ETL and category scoring for multi-tenant surveys. Refreshes KPI, trend and breakdown rollups and serves dashboards.
// @termsOfService http://swagger.io/terms/

// @contact.name SurveyPulse Support
// @contact.email support@surveypulse.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

// Package main is the entry point for the SurveyPulse analytics API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/checkfix-tools/surveypulse_backend/internal/app"
	"github.com/checkfix-tools/surveypulse_backend/internal/auth"
	"github.com/checkfix-tools/surveypulse_backend/internal/config"
	"github.com/checkfix-tools/surveypulse_backend/internal/handlers"
	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/middleware"

	// Swagger docs
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/checkfix-tools/surveypulse_backend/docs"
)

// Build-time variables (set via ldflags)
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// Refresh endpoint throttling per organization
const (
	refreshRateLimit  = 10
	refreshRateWindow = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// JWT verification is needed before anything is connected
	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		PrivateKeyPath:    cfg.JWTPrivateKeyPath,
		PublicKeyPath:     cfg.JWTPublicKeyPath,
		AccessTokenExpiry: cfg.AccessTokenExpiry,
		Issuer:            cfg.JWTIssuer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	ctx := context.Background()
	container, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	// Ensure indexes
	log.Info("creating database indexes")
	if indexErr := container.DB.EnsureIndexes(ctx); indexErr != nil {
		log.Warn("failed to create indexes", "error", indexErr)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(Version,
		handlers.Dependency{Name: "mongodb", Pinger: container.DB, Required: true},
		handlers.Dependency{Name: "cache", Pinger: container.Cache},
	)
	refreshLimiter := middleware.NewRateLimiter(refreshRateLimit, refreshRateWindow)
	analyticsHandler := handlers.NewAnalyticsHandler(
		container.Analytics,
		container.Granularities,
		refreshLimiter.RateLimit(),
		log,
	)

	// Create Gin router
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecureHeaders())

	// Register health routes (not under /api/v1)
	healthHandler.RegisterRoutes(router)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create API v1 group
	apiV1 := router.Group("/api/v1")
	authMiddleware := middleware.AuthMiddleware(jwtService)
	analyticsHandler.RegisterRoutes(apiV1, authMiddleware)

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Refreshes of long windows can take a while
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting SurveyPulse analytics server",
			"version", Version,
			"port", cfg.ServerPort,
			"environment", cfg.Environment,
			"build_time", BuildTime,
			"commit", GitCommit,
			"branch", GitBranch,
			"cache", container.Cache.Name(),
			"health_dependencies", healthHandler.DependencyNames(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server shutdown complete")
	return nil
}
