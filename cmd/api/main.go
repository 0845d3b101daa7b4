package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/shop-recommender/config"
	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/dustin/shop-recommender/internal/recommender"
	"github.com/dustin/shop-recommender/internal/utils"
	"github.com/dustin/shop-recommender/internal/worker"
	"github.com/dustin/shop-recommender/pkg/logger"
	"github.com/dustin/shop-recommender/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize logger with validation and defaults
	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	appLogger.Info("Starting shop recommender service")

	// Register prometheus collectors
	metrics.Init()

	// Initialize catalog service client with validation and defaults
	catalogURL := cfg.Catalog.BaseURL
	if catalogURL == "" {
		catalogURL = "http://localhost:8001"
	}

	catalogTimeout := 10 * time.Second // default
	if cfg.Catalog.HTTPTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Catalog.HTTPTimeout); err == nil {
			catalogTimeout = duration
		}
	}

	pageSize := 0
	if cfg.Catalog.PageSize != "" {
		if parsed, err := strconv.Atoi(cfg.Catalog.PageSize); err == nil {
			pageSize = parsed
		}
	}

	maxPages := 0
	if cfg.Catalog.MaxPages != "" {
		if parsed, err := strconv.Atoi(cfg.Catalog.MaxPages); err == nil {
			maxPages = parsed
		}
	}

	catalogClient := catalog.NewClient(catalogURL, catalogTimeout)
	appLogger.Info("Catalog client initialized with URL: " + catalogURL)

	// Initialize the recommendation core
	index := recommender.NewIndex()
	loader := recommender.NewSnapshotLoader(catalogClient, pageSize, maxPages, appLogger)
	engine := recommender.NewEngine(loader, index, appLogger)
	recommendationService := recommender.NewService(index, catalogClient, appLogger)

	// Initialize the refresh worker: startup, scheduled and on-demand rebuilds
	refreshWorker, err := worker.NewRefreshWorker(
		&cfg.Refresh,
		"index-refresh",
		func(ctx context.Context) error {
			_, err := engine.Rebuild(ctx)
			return err
		},
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize refresh worker: " + err.Error())
	}

	// Start background processing (also enqueues the startup rebuild)
	if err := refreshWorker.Start(); err != nil {
		appLogger.Error("Failed to start refresh worker: " + err.Error())
	}

	recommendationHandler := recommender.NewHandler(recommendationService, refreshWorker)

	// Setup HTTP router with middleware
	router := gin.New()

	// Configure standard middleware stack
	router.Use(requestid.New())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "shop-recommender",
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "healthy",
			"timestamp":        time.Now(),
			"service":          "shop-recommender",
			"refresh_worker":   refreshWorker.IsRunning(),
			"rebuilding":       refreshWorker.Rebuilding(),
			"indexed_products": index.Len(),
			"catalog_breaker":  catalogClient.BreakerState(),
		})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create simple JWT validation middleware
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production" // default
	}
	authMiddleware := createJWTMiddleware(jwtSecret)
	adminMiddleware := createAdminMiddleware()

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		recommendationHandler.RegisterRoutes(v1, authMiddleware, adminMiddleware)
	}

	// Parse server configuration with defaults
	serverPort := cfg.Server.Port
	if serverPort == "" {
		serverPort = "8080" // default
	}

	serverReadTimeout := 30 * time.Second // default
	if cfg.Server.ReadTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.ReadTimeout); err == nil {
			serverReadTimeout = duration
		}
	}

	serverWriteTimeout := 30 * time.Second // default
	if cfg.Server.WriteTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.WriteTimeout); err == nil {
			serverWriteTimeout = duration
		}
	}

	serverEnvironment := cfg.Server.Environment
	if serverEnvironment == "" {
		serverEnvironment = "development" // default
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	// Start server in goroutine for graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server: " + err.Error())
		}
	}()

	appLogger.Info("Server started successfully on port " + serverPort + " (" + serverEnvironment + " environment)")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop the refresh worker first so no rebuild is cut off mid-publish
	if err := refreshWorker.Stop(); err != nil {
		appLogger.Error("Error stopping refresh worker: " + err.Error())
	}

	// Shutdown server with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown: " + err.Error())
	}

	appLogger.Info("Server shutdown complete")
}

// createJWTMiddleware creates a simple JWT validation middleware
func createJWTMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// createAdminMiddleware restricts a route to tokens carrying the admin role
func createAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := utils.GetRoleFromToken(c)
		if err != nil || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
