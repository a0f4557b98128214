package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"centavo/internal/config"
	"centavo/internal/handlers"
	"centavo/internal/logger"
	"centavo/internal/middleware"
	"centavo/internal/models"
	"centavo/internal/services"
	"centavo/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
	config.Set(&config.Config{
		Env:            "test",
		AccessTokenTTL: 30 * time.Minute,
	})
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.AccessToken{},
		&models.Category{},
		&models.Wallet{},
		&models.Payment{},
		&models.Goal{},
		&models.Budget{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	categoryService := services.NewCategoryService(db)
	walletService := services.NewWalletService(db)
	paymentService := services.NewPaymentService(db, walletService)
	goalService := services.NewGoalService(db)
	budgetService := services.NewBudgetService(db)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	sessionHandler := handlers.NewSessionHandler(tokenService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	walletHandler := handlers.NewWalletHandler(walletService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	goalHandler := handlers.NewGoalHandler(goalService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	router.POST("/sessions", sessionHandler.CreateSession)
	router.POST("/users", userHandler.Register)

	protected := router.Group("/")
	protected.Use(middleware.Auth(tokenService))

	protected.DELETE("/sessions", sessionHandler.DeleteSession)

	protected.GET("/users/:key", userHandler.GetUser)
	protected.PATCH("/users/:key", userHandler.UpdateUser)
	protected.DELETE("/users/:key", userHandler.DeleteUser)

	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories", categoryHandler.GetCategories)
	protected.GET("/categories/:key", categoryHandler.GetCategory)
	protected.PATCH("/categories/:key", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:key", categoryHandler.DeleteCategory)
	protected.POST("/categories/:key/budgets", budgetHandler.CreateBudget)
	protected.GET("/categories/:key/budget", budgetHandler.GetCategoryBudget)

	protected.GET("/budgets/:key", budgetHandler.GetBudget)
	protected.PATCH("/budgets/:key", budgetHandler.UpdateBudget)
	protected.DELETE("/budgets/:key", budgetHandler.DeleteBudget)

	protected.POST("/wallets", walletHandler.CreateWallet)
	protected.GET("/wallets", walletHandler.GetWallets)
	protected.GET("/wallets/:key", walletHandler.GetWallet)
	protected.PATCH("/wallets/:key", walletHandler.UpdateWallet)
	protected.DELETE("/wallets/:key", walletHandler.DeleteWallet)
	protected.POST("/wallets/:key/payments", paymentHandler.CreatePayment)
	protected.GET("/wallets/:key/payments", paymentHandler.GetWalletPayments)

	protected.GET("/payments", paymentHandler.GetPayments)
	protected.GET("/payments/:key", paymentHandler.GetPayment)
	protected.PATCH("/payments/:key", paymentHandler.UpdatePayment)
	protected.DELETE("/payments/:key", paymentHandler.DeletePayment)

	protected.POST("/goals", goalHandler.CreateGoal)
	protected.GET("/goals", goalHandler.GetGoals)
	protected.GET("/goals/:key", goalHandler.GetGoal)
	protected.PATCH("/goals/:key", goalHandler.UpdateGoal)
	protected.DELETE("/goals/:key", goalHandler.DeleteGoal)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns their key.
func (app *testApp) registerUser(t *testing.T, email, password string) (userKey string) {
	t.Helper()
	body := fmt.Sprintf(`{"nickname":"tester","email":%q,"password":%q,"password_confirmation":%q}`,
		email, password, password)
	rec := app.request("POST", "/users", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return user["key"].(string)
}

// loginUser logs in and returns the plain access token.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/sessions", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string)
}

// createCategory creates a category and returns its key.
func (app *testApp) createCategory(t *testing.T, token, description string) (categoryKey string) {
	t.Helper()
	rec := app.request("POST", "/categories", fmt.Sprintf(`{"description":%q}`, description), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	category := result["category"].(map[string]interface{})
	return category["key"].(string)
}
