package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v82"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/handlers"
	"checkout-gateway/internal/kafka"
	"checkout-gateway/internal/logger"
	"checkout-gateway/internal/middleware"
	rediswrap "checkout-gateway/internal/redis"
	"checkout-gateway/internal/services"
	"checkout-gateway/internal/session"
	"checkout-gateway/internal/storage"

	"github.com/gin-gonic/gin"
)

// Global logger instance
var log *logger.Logger

func main() {
	log = logger.NewLogger()
	defer log.Close()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "Error loading .env file, using environment variables")
	}

	log.LogProcess("STARTUP", "Checkout Gateway starting up...")
	log.Info("SYSTEM", "Initializing components...")

	// Load configuration
	cfg := config.Load()
	log.Info("CONFIG", "Configuration loaded successfully")

	log.LogProcess("DATABASE", "Initializing MySQL database...")
	store, err := storage.NewMySQLStore(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", "Failed to initialize MySQL: "+err.Error())
	}
	defer store.Close()
	log.LogDatabase("INIT", "mysql", "MySQL storage initialized successfully")

	// Initialize Kafka
	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MockMode, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create Kafka producer: "+err.Error())
	}
	defer kafkaProducer.Close()
	log.LogKafka("INIT", "producer", "Kafka producer initialized successfully")

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	log.LogProcess("SERVICE", "Redis connection configured")

	sessionStore := session.NewStore(redisClient, cfg.Session.TTL)

	// Initialize Stripe with API key
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Warn("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		log.Warn("STRIPE", "Please set a valid Stripe API key in your .env file")
		// Don't set a default key here, let the service fail if no key is provided
	} else {
		stripe.Key = stripeKey
		log.LogProcess("STRIPE", "Stripe API initialized with key")
	}

	// Initialize services
	checkoutService := services.NewCheckoutService(store, kafkaProducer, log)
	log.LogProcess("SERVICE", "Checkout service initialized")

	stripeService, err := services.NewStripeService(log)
	if err != nil {
		log.Fatal("STRIPE", "Failed to initialize Stripe service: "+err.Error())
	}
	log.LogProcess("SERVICE", "Stripe service initialized")

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(stripeService, checkoutService, rediswrap.NewRedis(redisClient))
	methodHandler := handlers.NewMethodHandler(stripeService, checkoutService)
	log.LogProcess("HANDLER", "All handlers initialized")

	// Consume upstream order events unless Kafka runs in mock mode
	if !cfg.Kafka.MockMode {
		log.LogProcess("KAFKA", "Initializing Kafka consumer...")
		kafkaConsumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		if err != nil {
			log.Fatal("KAFKA", "Failed to create Kafka consumer: "+err.Error())
		}
		defer kafkaConsumer.Close()
		log.LogKafka("INIT", "consumer", "Kafka consumer initialized successfully")

		go func() {
			log.LogKafka("START", "consumer", "Starting Kafka consumer goroutine")
			if err := kafkaConsumer.ConsumeOrders(context.Background(), checkoutService.ProcessOrderEvent); err != nil {
				log.Error("KAFKA", "Consumer error: "+err.Error())
			}
		}()
	}

	// Setup router
	router := setupRouter(cfg, store, sessionStore, paymentHandler, methodHandler)
	log.LogProcess("ROUTER", "HTTP router configured")

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.LogProcess("SERVER", "Starting HTTP server on port "+cfg.Server.Port)
		log.Info("STARTUP", "🚀 Checkout Gateway is ready to accept requests!")
		log.Info("STARTUP", "📊 Health check available at: http://localhost"+cfg.Server.Port+"/health")
		log.Info("STARTUP", "💳 Checkout API available at: http://localhost"+cfg.Server.Port+"/api/v1/payment-intents")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "Server failed to start: "+err.Error())
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("SHUTDOWN", "Received shutdown signal, initiating graceful shutdown...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("SHUTDOWN", "Server forced to shutdown: "+err.Error())
	}

	log.Info("SHUTDOWN", "✅ Checkout Gateway shutdown completed successfully")
}

func setupRouter(cfg *config.Config, store *storage.MySQLStore, sessionStore *session.Store, paymentHandler *handlers.PaymentHandler, methodHandler *handlers.MethodHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.EnhancedLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigin))
	router.Use(middleware.RateLimit(log))
	router.Use(middleware.SecurityHeaders(log))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := store.HealthCheck(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "checkout-gateway",
			"version":   "1.0.0",
		})
	})

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Session(sessionStore, cfg.Session.CookieName, cfg.Session.TTL, log))
	{
		intents := v1.Group("/payment-intents")
		{
			intents.POST("", paymentHandler.CreateIntent)
			intents.GET("/:id", paymentHandler.GetIntent)
			intents.POST("/:id/confirm", paymentHandler.ConfirmIntent)
		}

		methods := v1.Group("/payment-methods")
		{
			methods.GET("", methodHandler.ListMethods)
			methods.POST("/attach", methodHandler.AttachMethod)
			methods.POST("/tokenize", methodHandler.TokenizeCard)
			methods.DELETE("/:id", methodHandler.DetachMethod)
			methods.PATCH("/:id/default", methodHandler.SetDefaultMethod)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", paymentHandler.ListOrders)
			orders.GET("/:id", paymentHandler.GetOrder)
		}
	}

	log.LogProcess("ROUTER", "All routes registered successfully")
	return router
}
