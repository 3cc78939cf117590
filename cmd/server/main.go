package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookvault/internal/config"
	"bookvault/internal/handler"
	"bookvault/internal/middleware"
	"bookvault/internal/repository"
	"bookvault/internal/service"
	"bookvault/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- Credential Store ---
	var userRepo repository.UserRepository
	switch cfg.StoreDriver {
	case config.StorePostgres:
		dbCfg, err := config.LoadDBConfig()
		if err != nil {
			log.Fatalf("Failed to load DB config: %v", err)
		}
		dbPool, err := config.ConnectDB(dbCfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()
		if err := config.AutoMigrate(dbPool); err != nil {
			log.Fatalf("Failed to auto-migrate database: %v", err)
		}
		userRepo = repository.NewPostgresUserRepository(dbPool)
	default:
		dynamoClient, err := config.NewDynamoClient(context.Background(), cfg.Dynamo)
		if err != nil {
			log.Fatalf("Failed to create DynamoDB client: %v", err)
		}
		userRepo = repository.NewDynamoUserRepository(dynamoClient, cfg.Dynamo.Table)
		log.Printf("Using DynamoDB users table %q in %s", cfg.Dynamo.Table, cfg.Dynamo.Region)
	}

	// --- Caches ---
	// Profile read-through cache and rate-limit window counters, constructed
	// here and injected; disposed with the process.
	profiles := cache.New(service.ProfileCacheTTL, 5*time.Minute)
	rateCounters := cache.New(cfg.RateLimitWindow, cfg.RateLimitWindow)
	defer profiles.Flush()
	defer rateCounters.Flush()

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.TokenTTL)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, cfg.AdminEmail, profiles)
	userService := service.NewUserService(userRepo, profiles)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// --- Setup Gin Router ---
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Gateway layer, in order: request ID, CORS, rate limit, API key, bot filter
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RateLimit(rateCounters, cfg.RateLimitMax, cfg.RateLimitWindow))
	router.Use(middleware.APIKey(cfg.APIKey))
	router.Use(middleware.BotFilter())

	// --- Register Routes ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW)
	userHandler.RegisterUserRoutes(apiGroup, jwtAuthMW)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := userRepo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "store": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
