package main

import (
	"fmt"
	"net/http"
	"os"

	"centavo/internal/config"
	"centavo/internal/database"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/services"
	"centavo/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "centavo/internal/docs" // Import swagger docs
)

// @title           Centavo API
// @version         1.0
// @description     Centavo is a personal finance bookkeeping API for tracking wallets, payments, saving goals, and per-category budget periods.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an access token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validation rules
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig())
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	categoryService := services.NewCategoryService(db)
	walletService := services.NewWalletService(db)
	paymentService := services.NewPaymentService(db, walletService)
	goalService := services.NewGoalService(db)
	budgetService := services.NewBudgetService(db)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(tokenService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	walletHandler := handlers.NewWalletHandler(walletService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	goalHandler := handlers.NewGoalHandler(goalService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/up", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	router.POST("/sessions", sessionHandler.CreateSession)
	router.POST("/users", userHandler.Register)

	// Protected routes
	protected := router.Group("/")
	protected.Use(middleware.Auth(tokenService))

	protected.DELETE("/sessions", sessionHandler.DeleteSession)

	// User routes (self only)
	users := protected.Group("/users")
	users.GET("/:key", userHandler.GetUser)
	users.PATCH("/:key", userHandler.UpdateUser)
	users.DELETE("/:key", userHandler.DeleteUser)

	// Category routes, with nested budget allocation and resolution
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:key", categoryHandler.GetCategory)
	categories.PATCH("/:key", categoryHandler.UpdateCategory)
	categories.DELETE("/:key", categoryHandler.DeleteCategory)
	categories.POST("/:key/budgets", budgetHandler.CreateBudget)
	categories.GET("/:key/budget", budgetHandler.GetCategoryBudget)

	// Budget routes (shallow)
	budgets := protected.Group("/budgets")
	budgets.GET("/:key", budgetHandler.GetBudget)
	budgets.PATCH("/:key", budgetHandler.UpdateBudget)
	budgets.DELETE("/:key", budgetHandler.DeleteBudget)

	// Wallet routes, with nested payments
	wallets := protected.Group("/wallets")
	wallets.POST("", walletHandler.CreateWallet)
	wallets.GET("", walletHandler.GetWallets)
	wallets.GET("/:key", walletHandler.GetWallet)
	wallets.PATCH("/:key", walletHandler.UpdateWallet)
	wallets.DELETE("/:key", walletHandler.DeleteWallet)
	wallets.POST("/:key/payments", paymentHandler.CreatePayment)
	wallets.GET("/:key/payments", paymentHandler.GetWalletPayments)

	// Payment routes (shallow)
	payments := protected.Group("/payments")
	payments.GET("", paymentHandler.GetPayments)
	payments.GET("/:key", paymentHandler.GetPayment)
	payments.PATCH("/:key", paymentHandler.UpdatePayment)
	payments.DELETE("/:key", paymentHandler.DeletePayment)

	// Goal routes
	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:key", goalHandler.GetGoal)
	goals.PATCH("/:key", goalHandler.UpdateGoal)
	goals.DELETE("/:key", goalHandler.DeleteGoal)

	log.Infof("Starting Centavo server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
