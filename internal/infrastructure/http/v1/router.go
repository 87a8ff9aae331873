// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kantina/internal/domain/auth"
	"kantina/internal/domain/reports"
	"kantina/internal/infrastructure/http/v1/handlers"
	"kantina/internal/infrastructure/http/v1/middleware"
	"kantina/internal/infrastructure/storage/postgres"
	"kantina/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Reports computes report payloads.
	Reports *reports.Service

	// Snapshots supplies entity snapshots for report computation.
	Snapshots handlers.SnapshotProvider

	// Cache stores rendered reports; may be nil.
	Cache handlers.ReportCache
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		reportsHandler := handlers.NewReportsHandler(base, cfg.Reports, cfg.Snapshots, cfg.Cache)
		reportsGroup := protected.Group("/reports")
		{
			reportsGroup.GET("/turnover", reportsHandler.GetTurnover)
			reportsGroup.GET("/suppliers/aging", reportsHandler.GetSupplierAging)
			reportsGroup.GET("/suppliers/balances", reportsHandler.GetSupplierBalances)
			reportsGroup.GET("/clients/aging", reportsHandler.GetClientAging)
			reportsGroup.GET("/clients/balances", reportsHandler.GetClientBalances)
		}
	}

	return router
}
