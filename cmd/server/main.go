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
	"github.com/shopspring/decimal"

	"github.com/cxr0514/AgentsHub-sub000/internal/cache"
	"github.com/cxr0514/AgentsHub-sub000/internal/commentary"
	"github.com/cxr0514/AgentsHub-sub000/internal/config"
	"github.com/cxr0514/AgentsHub-sub000/internal/criteria"
	"github.com/cxr0514/AgentsHub-sub000/internal/database"
	"github.com/cxr0514/AgentsHub-sub000/internal/handlers"
	"github.com/cxr0514/AgentsHub-sub000/internal/logger"
	"github.com/cxr0514/AgentsHub-sub000/internal/middleware"
	"github.com/cxr0514/AgentsHub-sub000/internal/provider"
	"github.com/cxr0514/AgentsHub-sub000/internal/report"
	"github.com/cxr0514/AgentsHub-sub000/internal/repository"
	"github.com/cxr0514/AgentsHub-sub000/internal/search"
	"github.com/cxr0514/AgentsHub-sub000/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting AgentsHub CMA API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Wire the CMA engine: store, provider, cache, orchestrator, service.
	propertyRepo := repository.NewPropertyRepository(db)

	var providerClient provider.Client
	if cfg.Provider.APIKey != "" {
		providerClient = provider.NewHTTPClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Timeout, log)
	} else {
		log.Warn("PROVIDER_API_KEY not set; comp searches use the local store only", nil)
	}

	resultCache := cache.NewResultCache(cfg.Cache.TTL)
	orchestrator := search.NewOrchestrator(propertyRepo, providerClient, resultCache, log)

	var commentaryGen commentary.Generator
	if cfg.Commentary.APIKey != "" {
		commentaryGen = commentary.NewOpenAIGenerator(cfg.Commentary.APIKey, cfg.Commentary.Model)
	}

	cmaService := services.NewCMAService(
		propertyRepo,
		criteria.NewDeriver(),
		orchestrator,
		report.NewAssembler(),
		commentaryGen,
		decimal.NewFromFloat(cfg.Valuation.DefaultMultiplier),
		log,
	)

	// Initialize handlers
	cmaHandler := handlers.NewCMAHandler(cmaService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		cma := v1.Group("/cma")
		{
			cma.POST("/criteria", cmaHandler.DeriveCriteria)
			cma.POST("/search", cmaHandler.SearchComps)
			cma.POST("/valuation", cmaHandler.ComputeValuation)
			cma.POST("/reports", cmaHandler.GenerateReport)
			cma.POST("/reports/assemble", cmaHandler.BuildReport)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
